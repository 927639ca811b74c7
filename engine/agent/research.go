package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/CarBotAI/carbot-mvp/pkg/ollama"
	"github.com/CarBotAI/carbot-mvp/pkg/resilience"
)

// KnowledgeEntry is one category of the internal research knowledge base.
type KnowledgeEntry struct {
	Category string
	Keywords []string
	Data     string
}

// KnowledgeBase backs vehicle research when no model is reachable. The
// final entry has no keywords and acts as the default.
var KnowledgeBase = []KnowledgeEntry{
	{
		Category: "seguridad",
		Keywords: []string{"seguridad", "safety", "airbag", "crash", "nhtsa", "iihs"},
		Data: `🛡️ **Características de Seguridad Comunes (Base de Conocimiento):**
- Airbags frontales y laterales estándar en la mayoría de modelos 2022+.
- Sistema de frenos ABS y Control de estabilidad electrónico (ESC) son obligatorios.
- Muchos coches modernos incluyen Asistencia de frenado de emergencia.
- **Calificaciones:** Busca calificaciones de 5 estrellas de NHTSA o Top Safety Pick+ de IIHS para máxima seguridad.
- **ADAS:** Sistemas avanzados como frenado automático de emergencia, detección de punto ciego, control de crucero adaptativo son comunes en gamas medias-altas.
- **Familiar:** Anclajes ISOFIX/LATCH para sillas de bebé son estándar.`,
	},
	{
		Category: "consumo",
		Keywords: []string{"consumo", "combustible", "eficiencia", "mpg", "litros/100km", "híbrido", "electrico"},
		Data: `⛽ **Datos de Eficiencia de Combustible (Base de Conocimiento):**
- Sedanes compactos: 6-8L/100km (gasolina). Híbridos: 4-5L/100km. Eléctricos: 15-20 kWh/100km.
- SUVs: 8-12L/100km (gasolina). Híbridos SUV: 5-7L/100km.
- **Factores:** Estilo de conducción, tráfico, mantenimiento, tipo de combustible/carga.
- **Eco-Friendly:** Híbridos (HEV), Híbridos Enchufables (PHEV), Eléctricos (BEV) ofrecen el menor impacto.`,
	},
	{
		Category: "tecnologia",
		Keywords: []string{"tecnología", "tech", "conectividad", "pantalla", "infotainment", "asistentes"},
		Data: `📱 **Características Tecnológicas Comunes (Base de Conocimiento):**
- **Infotainment:** Pantallas táctiles (8-15 pulgadas), Apple CarPlay/Android Auto. Navegación GPS integrada. Comandos de voz.
- **Conectividad:** Wi-Fi hotspot, carga inalámbrica de móviles, múltiples puertos USB.
- **Asistentes Inteligentes (ADAS):** Control de crucero adaptativo, asistente de mantenimiento de carril, cámaras 360º, head-up display.
- **Actualizaciones OTA (Over-the-Air):** Algunos fabricantes ofrecen actualizaciones de software remotas.`,
	},
	{
		Category: "general_info",
		Data: `📋 **Información General Disponible (Base de Conocimiento):**
- Los vehículos modelo 2022 en adelante suelen incorporar las últimas tecnologías disponibles en su gama.
- La fiabilidad puede variar por marca y modelo; se recomienda consultar fuentes como Consumer Reports o J.D. Power.
- Costos de mantenimiento tienden a ser más altos para marcas de lujo y vehículos europeos.`,
	},
}

// LookupKnowledge picks the first knowledge base category whose keywords
// match the query, falling back to the default entry.
func LookupKnowledge(query string) KnowledgeEntry {
	lower := strings.ToLower(query)
	for _, entry := range KnowledgeBase {
		if len(entry.Keywords) == 0 {
			continue
		}
		if containsAny(lower, entry.Keywords...) {
			return entry
		}
	}
	return KnowledgeBase[len(KnowledgeBase)-1]
}

// Chatter phrases analysis through a language model.
type Chatter interface {
	Chat(ctx context.Context, messages []ollama.Message) (string, error)
}

// Maria is the research specialist. With a model available she analyzes
// knowledge base snippets into a tailored report; without one she answers
// straight from the knowledge base. Model calls go through a circuit
// breaker and rate limiter so a flaky local model never stalls a sale.
type Maria struct {
	chat    Chatter
	breaker *resilience.Breaker
	limiter *resilience.Limiter
	log     *slog.Logger
}

// NewMaria creates the research agent. chat may be nil for offline use.
func NewMaria(chat Chatter, log *slog.Logger) *Maria {
	if log == nil {
		log = slog.Default()
	}
	return &Maria{
		chat:    chat,
		breaker: resilience.NewBreaker(resilience.DefaultBreakerOpts),
		limiter: resilience.NewLimiter(resilience.LimiterOpts{Rate: 1, Burst: 3}),
		log:     log,
	}
}

const mariaPrompt = `Eres María, una investigadora de coches experta y analítica. Carlos, un vendedor, te ha hecho una consulta.
Analiza críticamente los fragmentos de la base de conocimiento y redacta un informe conciso y útil para Carlos.
Comienza con "🔬 **ANÁLISIS DETALLADO DE MARÍA:**", aborda directamente la consulta, destaca pros y contras, menciona calificaciones de seguridad si aparecen, y mantén un tono profesional y objetivo.`

// Research answers a vehicle research query.
func (m *Maria) Research(ctx context.Context, query string) string {
	m.log.Info("research request", "query", query)
	entry := LookupKnowledge(query)

	if m.chat == nil {
		return m.directReport(query, entry)
	}

	var analysis string
	err := m.limiter.Call(ctx, func(ctx context.Context) error {
		return m.breaker.Call(ctx, func(ctx context.Context) error {
			out, err := m.chat.Chat(ctx, []ollama.Message{
				{Role: "system", Content: mariaPrompt},
				{Role: "user", Content: fmt.Sprintf("CONSULTA DE CARLOS: %q\n\nFRAGMENTOS (%s):\n%s", query, entry.Category, entry.Data)},
			})
			if err != nil {
				return err
			}
			analysis = out
			return nil
		})
	})
	if err != nil {
		m.log.Warn("model analysis unavailable, answering from knowledge base", "error", err)
		return m.directReport(query, entry)
	}

	return strings.TrimSpace(fmt.Sprintf(`🔬 **INFORME DE INVESTIGACIÓN DE MARÍA:**

**Consulta Original de Carlos:** %q
**Fuentes Consultadas:** Base de Conocimiento Interna

%s

⚠️ **Nota para Carlos:** Este análisis se basa en la información recopilada. Siempre verifica los detalles con el vehículo específico en nuestro inventario.`, query, analysis))
}

func (m *Maria) directReport(query string, entry KnowledgeEntry) string {
	return fmt.Sprintf(`🔬 **INVESTIGACIÓN DE MARÍA - INFORMACIÓN INTERNA (Directa):**

Consultando nuestra base de conocimiento interna sobre tu solicitud: '%s'.

%s`, query, entry.Data)
}
