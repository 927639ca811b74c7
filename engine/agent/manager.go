package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/CarBotAI/carbot-mvp/engine/inventory"
	"github.com/CarBotAI/carbot-mvp/engine/search"
)

// PricingRules are the manager's discount and margin policy.
type PricingRules struct {
	MaxDiscount     float64
	MinMargin       float64
	PremiumMakes    []string
	PremiumDiscount float64
}

// DefaultPricingRules is the current sales policy.
var DefaultPricingRules = PricingRules{
	MaxDiscount:     0.15,
	MinMargin:       0.08,
	PremiumMakes:    []string{"Ferrari", "Lamborghini", "Rolls-Royce", "Bentley"},
	PremiumDiscount: 0.05,
}

// Manager is the strategic decision engine the sales agent consults for
// pricing authority, stock priorities, and policy questions. Every answer
// is deterministic: requests are routed by keyword to a handler.
type Manager struct {
	search  *search.Service
	store   *inventory.Store
	rules   PricingRules
	log     *slog.Logger
	maxHits int
}

// NewManager creates the decision engine over the store and search service.
func NewManager(store *inventory.Store, svc *search.Service, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		search:  svc,
		store:   store,
		rules:   DefaultPricingRules,
		log:     log,
		maxHits: 8,
	}
}

var searchRequestKeywords = []string{
	"buscar coche", "opciones de vehículo", "inventario", "búsqueda de coches",
	"inventory search", "buscar en inventario",
}

// Consult routes a request from the sales floor to the right handler.
func (m *Manager) Consult(ctx context.Context, request string) string {
	m.log.Info("manager consultation", "request", request)
	lower := strings.ToLower(request)

	if containsAny(lower, searchRequestKeywords...) {
		return m.handleInventorySearch(ctx, request, lower)
	}
	if containsAny(lower, "precio", "descuento", "rebaja", "oferta") {
		return m.handlePricing(request)
	}
	if containsAny(lower, "prioridad", "recomendar", "inventario") {
		return m.handleInventoryPriority(request)
	}
	if containsAny(lower, "política", "regla", "procedimiento") {
		return m.handlePolicy(request)
	}
	return m.handleGeneral(request)
}

// queryMarkers locate the actual search terms inside a free-form request.
var queryMarkers = []string{"necesito opciones de", "busca un", "buscando", "query:"}

var fillerPhrases = []string{
	"el cliente busca", "necesito opciones del inventario",
	"realiza una búsqueda de inventario para", "inventory search for",
}

func extractSearchQuery(request, lower string) string {
	for _, marker := range queryMarkers {
		if idx := strings.Index(lower, marker); idx != -1 {
			return strings.TrimSpace(request[idx+len(marker):])
		}
	}
	for _, phrase := range fillerPhrases {
		if strings.Contains(lower, phrase) {
			return strings.TrimSpace(strings.ReplaceAll(lower, phrase, ""))
		}
	}
	return request
}

func (m *Manager) handleInventorySearch(ctx context.Context, request, lower string) string {
	q := extractSearchQuery(request, lower)
	if strings.TrimSpace(q) == "" || strings.TrimSpace(q) == "." {
		return "Por favor, especifica mejor qué tipo de vehículos necesita el cliente para la búsqueda en inventario."
	}
	m.log.Info("manager inventory search", "query", q)

	results, err := m.search.Search(ctx, q, m.maxHits)
	if err != nil || len(results) == 0 {
		return fmt.Sprintf(`🏢 **RESPUESTA DEL MANAGER - BÚSQUEDA DE INVENTARIO:**

No se encontraron vehículos que coincidan con los criterios: '%s'.
Por favor, informa al cliente e intenta con criterios más amplios si es posible.`, q)
	}

	formatted := search.FormatResults(results, len(results))

	var directives []string
	p1 := results[0]
	directives = append(directives, fmt.Sprintf(
		"1. **Prioridad Alta:** Presenta activamente el **%d %s %s (VIN: %s)**. (Razón: Excelente coincidencia general y buen estado '%s').",
		p1.Year, p1.Make, p1.Model, p1.VIN, p1.Condition))
	topFeatures := p1.Features
	if len(topFeatures) > 2 {
		topFeatures = topFeatures[:2]
	}
	directives = append(directives, fmt.Sprintf(
		"   💡 Estrategia Sugerida: Destaca sus características '%s' y su calificación de seguridad (%d/5).",
		strings.Join(topFeatures, ", "), p1.SafetyRating))
	if len(results) > 1 {
		p2 := results[1]
		directives = append(directives, fmt.Sprintf(
			"2. **Alternativa:** Si el cliente no está convencido, ofrece el **%d %s %s (VIN: %s)**. (Razón: Buena alternativa, también con alta seguridad %d/5).",
			p2.Year, p2.Make, p2.Model, p2.VIN, p2.SafetyRating))
	}

	return fmt.Sprintf(`🏢 **RESPUESTA DEL MANAGER - BÚSQUEDA DE INVENTARIO ESTRATÉGICA:**

Carlos, he procesado tu solicitud: '%s'.
Criterios de búsqueda identificados: '%s'.

Vehículos Encontrados que Coinciden (para tu referencia interna):
%s

🎯 **DIRECTIVA DE VENTA (Prioriza estas opciones):**
%s

📋 **Notas Adicionales del Manager:**
- Recuerda verificar las últimas promociones aplicables.
- Si el cliente tiene un presupuesto ajustado y estas opciones no encajan, consúltame de nuevo para estrategias de financiamiento o alternativas de menor costo.`,
		request, q, formatted, strings.Join(directives, "\n"))
}

func (m *Manager) handlePricing(request string) string {
	m.log.Info("manager pricing guidelines issued")
	return fmt.Sprintf(`🏢 **DECISIÓN DEL MANAGER - POLÍTICA DE PRECIOS:**

Tras analizar tu solicitud sobre precios ('%s') y consultar nuestras directrices internas de descuentos y márgenes, te proporciono la siguiente política:

📋 **Autorización de Descuentos:**
- Descuento estándar autorizado: hasta 10%%
- Para descuentos mayores (10-15%%): requiere justificación
- Vehículos premium (%s): máximo %.0f%% de descuento
- Vehículos con más de 6 meses en inventario: hasta %.0f%%

💰 **Estrategia de Precios:**
- Enfócate en el valor y beneficios únicos
- Ofrece paquetes de servicios adicionales
- Considera financiamiento atractivo como alternativa

⚠️ **Restricciones:**
- NO autorizar descuentos superiores al %.0f%%
- Mantener margen mínimo del %.0f%%
- Documentar todas las negociaciones

🎯 **Recomendación:** Presenta el valor completo antes de discutir precio.`,
		request,
		strings.Join(m.rules.PremiumMakes, ", "),
		m.rules.PremiumDiscount*100,
		m.rules.MaxDiscount*100,
		m.rules.MaxDiscount*100,
		m.rules.MinMargin*100)
}

func (m *Manager) handleInventoryPriority(request string) string {
	stats := m.store.Stats()
	m.log.Info("manager inventory priorities issued")
	return fmt.Sprintf(`🏢 **DECISIÓN DEL MANAGER - PRIORIDADES DE INVENTARIO:**

He revisado tu consulta sobre prioridades de inventario ('%s') y el estado actual de nuestras existencias.
Las siguientes son las prioridades y estrategias de venta actuales:

📊 **Estado Actual del Inventario:**
- Total de vehículos: %d
- Valor total: €%.0f
- Precio promedio: €%.0f

🎯 **Prioridades de Venta (Orden de Importancia):**
1. **Vehículos de alto margen:** BMW, Mercedes-Benz, Audi
2. **Inventario antiguo:** Modelos con más de 4 meses
3. **Vehículos familiares:** SUVs y sedanes grandes
4. **Híbridos y eléctricos:** Demanda creciente

💡 **Estrategias Recomendadas:**
- Promociona vehículos con características de seguridad avanzadas
- Enfatiza eficiencia de combustible en híbridos
- Destaca tecnología en vehículos premium
- Ofrece garantías extendidas en vehículos usados

🚨 **Alertas de Inventario:**
- Priorizar venta de vehículos con más de 20,000 km
- Impulsar modelos con inventario alto`,
		request, stats.TotalVehicles, float64(stats.TotalValue), stats.AveragePrice)
}

func (m *Manager) handlePolicy(request string) string {
	m.log.Info("manager policy information issued")
	return fmt.Sprintf(`🏢 **POLÍTICAS Y PROCEDIMIENTOS DE LA EMPRESA:**

En respuesta a tu consulta sobre políticas ('%s'), aquí tienes un resumen de los procedimientos relevantes de la empresa:

📋 **Políticas de Venta:**
- Transparencia total en precios y condiciones
- Pruebas de manejo disponibles para todos los clientes
- Garantía mínima de 1 año en todos los vehículos
- Financiamiento disponible con socios bancarios

🔧 **Servicios Incluidos:**
- Inspección completa pre-entrega
- Transferencia de documentación
- Seguro temporal de 30 días
- Servicio de mantenimiento por 6 meses

⚖️ **Políticas de Devolución:**
- 7 días para cambio de opinión
- Garantía de satisfacción del cliente
- Reembolso completo si hay defectos ocultos

📞 **Escalación:**
- Consultar al manager para casos especiales
- Autorización requerida para descuentos >10%%
- Documentar todas las excepciones`, request)
}

func (m *Manager) handleGeneral(request string) string {
	m.log.Info("manager general consultation")
	return fmt.Sprintf(`🏢 **CONSULTA GENERAL DEL MANAGER:**

He analizado tu consulta general: "%s".

💼 **Recomendaciones Generales Basadas en Prácticas Estándar y Objetivos Actuales:**
- Mantén siempre el enfoque en las necesidades del cliente
- Construye valor antes de discutir precio
- Usa técnicas de venta consultiva
- Documenta todas las interacciones importantes

🎯 **Objetivos del Mes:**
- Incrementar satisfacción del cliente
- Mejorar tiempo de respuesta
- Aumentar venta de servicios adicionales

📈 **KPIs a Considerar:**
- Tasa de conversión de leads
- Tiempo promedio de venta
- Satisfacción post-venta

¿Necesitas orientación específica sobre algún aspecto?`, request)
}
