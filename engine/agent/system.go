// Package agent implements the dealership's sales conversation layer: a
// tagged-command tool registry shared by three personas. Carlos fronts the
// customer, María researches vehicles, and the Manager issues pricing and
// stock directives.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/CarBotAI/carbot-mvp/engine/inventory"
	"github.com/CarBotAI/carbot-mvp/engine/query"
	"github.com/CarBotAI/carbot-mvp/engine/search"
)

// Role identifies an agent persona.
type Role string

const (
	RoleCarlos  Role = "carlos_sales"
	RoleMaria   Role = "maria_research"
	RoleManager Role = "manager_coordinator"
)

// Communication is one message exchanged between personas.
type Communication struct {
	From      Role      `json:"from"`
	To        Role      `json:"to"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Action is one logged agent action.
type Action struct {
	Timestamp time.Time `json:"timestamp"`
	Agent     Role      `json:"agent"`
	Name      string    `json:"action"`
	Details   string    `json:"details"`
}

// ToolFunc executes one named command against the system.
type ToolFunc func(ctx context.Context, arg string) string

// ErrUnknownTool is returned by Dispatch for unregistered commands.
var ErrUnknownTool = fmt.Errorf("unknown tool")

// System wires the personas over a shared store and search service. All
// state mutations go through the mutex; the system is safe for concurrent
// conversations against a single shared profile.
type System struct {
	store   *inventory.Store
	search  *search.Service
	manager *Manager
	maria   *Maria
	bus     *CommsBus
	log     *slog.Logger
	tools   map[string]ToolFunc

	mu      sync.Mutex
	profile CustomerProfile
	stage   SalesStage
	notes   []string
	comms   []Communication
	actions []Action
}

// SystemOption configures a System.
type SystemOption func(*System)

// WithSystemLogger sets the system logger.
func WithSystemLogger(l *slog.Logger) SystemOption {
	return func(s *System) { s.log = l }
}

// WithChat enables model-phrased responses and research analysis.
func WithChat(c Chatter) SystemOption {
	return func(s *System) { s.maria = NewMaria(c, s.log) }
}

// WithCommsBus publishes inter-agent communications over NATS.
func WithCommsBus(b *CommsBus) SystemOption {
	return func(s *System) { s.bus = b }
}

// NewSystem builds the sales system over an explicit store and search
// service.
func NewSystem(store *inventory.Store, svc *search.Service, opts ...SystemOption) *System {
	s := &System{
		store:  store,
		search: svc,
		log:    slog.Default(),
		stage:  StageGreeting,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maria == nil {
		s.maria = NewMaria(nil, s.log)
	}
	s.manager = NewManager(store, svc, s.log)

	s.tools = map[string]ToolFunc{
		"SearchInventory":       s.toolSearchInventory,
		"GetVehicleDetails":     s.toolGetVehicleDetails,
		"ReserveVehicle":        s.toolReserveVehicle,
		"ConsultManager":        s.toolConsultManager,
		"ResearchVehicleInfo":   s.toolResearchVehicleInfo,
		"UpdateCustomerProfile": s.toolUpdateCustomerProfile,
		"UpdateSalesStage":      s.toolUpdateSalesStage,
		"UpdateCustomerNotes":   s.toolUpdateCustomerNotes,
	}
	return s
}

// Tools lists the registered command names.
func (s *System) Tools() []string {
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	return names
}

// Dispatch runs a named tool with its argument.
func (s *System) Dispatch(ctx context.Context, name, arg string) (string, error) {
	tool, ok := s.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return tool(ctx, arg), nil
}

func (s *System) toolSearchInventory(ctx context.Context, q string) string {
	results, err := s.search.Search(ctx, q, s.manager.maxHits)
	if err != nil {
		s.log.Error("inventory search failed", "error", err)
		return "❌ Error interno al realizar la búsqueda de inventario."
	}
	return search.FormatResults(results, len(results))
}

func (s *System) toolGetVehicleDetails(_ context.Context, vin string) string {
	res, ok := s.search.Lookup(vin)
	if !ok {
		return fmt.Sprintf("No encontré ningún vehículo con VIN %s en nuestro inventario.", strings.TrimSpace(vin))
	}
	return search.FormatResults([]search.Result{res}, 1)
}

func (s *System) toolReserveVehicle(ctx context.Context, vin string) string {
	s.logAction(RoleCarlos, "finalize_sale_attempt", "VIN: "+vin)
	if err := s.store.Reserve(ctx, vin); err != nil {
		s.log.Warn("reservation failed", "vin", vin, "error", err)
		return fmt.Sprintf("Hubo un problema al intentar reservar el vehículo %s. Por favor, verifica el VIN o el estado del vehículo. Podría ser que ya no esté disponible.", strings.TrimSpace(vin))
	}
	return fmt.Sprintf("¡Excelente! El vehículo con VIN %s ha sido reservado exitosamente. El proceso de compra ha concluido. ¡Gracias!", strings.TrimSpace(vin))
}

func (s *System) toolConsultManager(ctx context.Context, request string) string {
	s.logComm(ctx, RoleCarlos, RoleManager, "consultation_request", request)
	response := s.manager.Consult(ctx, request)
	s.logComm(ctx, RoleManager, RoleCarlos, "consultation_response", response)
	return response
}

func (s *System) toolResearchVehicleInfo(ctx context.Context, q string) string {
	s.logComm(ctx, RoleCarlos, RoleMaria, "research_request", q)
	report := s.maria.Research(ctx, q)
	s.logComm(ctx, RoleMaria, RoleCarlos, "research_response", report)
	return report
}

func (s *System) toolUpdateCustomerProfile(_ context.Context, info string) string {
	s.logAction(RoleCarlos, "profile_update", info)
	s.mu.Lock()
	s.profile.UpdateFromText(info)
	summary := s.profile.Summary()
	s.mu.Unlock()
	return "Perfil actualizado: " + summary
}

func (s *System) toolUpdateSalesStage(_ context.Context, stage string) string {
	newStage, err := ParseStage(strings.ToLower(strings.TrimSpace(stage)))
	if err != nil {
		return "Etapa de venta inválida: " + stage
	}
	s.mu.Lock()
	old := s.stage
	s.stage = newStage
	s.mu.Unlock()
	s.logAction(RoleCarlos, "stage_transition", fmt.Sprintf("%s -> %s", old, newStage))
	return "Etapa de venta actualizada a: " + string(newStage)
}

// Notes arguments may carry an "overwrite:" prefix to replace the pad
// instead of appending.
func (s *System) toolUpdateCustomerNotes(_ context.Context, note string) string {
	s.logAction(RoleCarlos, "update_customer_notes", note)
	s.mu.Lock()
	defer s.mu.Unlock()
	if rest, ok := strings.CutPrefix(note, "overwrite:"); ok {
		s.notes = []string{strings.TrimSpace(rest)}
		return fmt.Sprintf("Notas sobrescritas. Nueva nota: '%s'", strings.TrimSpace(rest))
	}
	s.notes = append(s.notes, note)
	return fmt.Sprintf("Nota añadida: '%s'. Total de notas: %d.", note, len(s.notes))
}

var vinInText = regexp.MustCompile(`\b[A-Z0-9]{17}\b`)

// ProcessCustomerInput is the conversation entry point: the profile learns
// from the utterance, then the input is routed to the persona response.
// Routing is deterministic keyword dispatch; a configured model only
// rephrases, never decides.
func (s *System) ProcessCustomerInput(ctx context.Context, input string) string {
	s.log.Info("customer input", "input", input)

	s.mu.Lock()
	s.profile.UpdateFromText(input)
	stage := s.stage
	s.mu.Unlock()

	response := s.route(ctx, input, stage)

	s.logAction(RoleCarlos, "response_to_customer", response)
	return response
}

func (s *System) route(ctx context.Context, input string, stage SalesStage) string {
	lower := strings.ToLower(input)

	// Explicit purchase intent with a VIN closes the deal.
	if containsAny(lower, "reservar", "lo compro", "me lo quedo", "quiero comprarlo") {
		if vin := vinInText.FindString(strings.ToUpper(input)); vin != "" {
			s.setStage(StageClosing)
			return s.toolReserveVehicle(ctx, vin)
		}
		return "¡Perfecto! Para reservarlo solo necesito el VIN del vehículo que te interesa. ¿Me lo confirmas?"
	}

	// Hard criteria (price, color, make, body style, fuel) always mean an
	// inventory search. Feature words alone can also be research questions,
	// so those are checked after the research topics.
	crit := query.Parse(input)
	hard := crit
	hard.RequiredFeatures = nil
	if !hard.Empty() {
		s.setStage(StagePresentation)
		return s.toolSearchInventory(ctx, input)
	}

	if containsAny(lower, "¿qué tal", "qué opinas", "háblame de", "seguridad", "consumo", "tecnología", "fiabilidad") {
		return s.toolResearchVehicleInfo(ctx, input)
	}

	if !crit.Empty() {
		s.setStage(StagePresentation)
		return s.toolSearchInventory(ctx, input)
	}

	if stage == StageGreeting && containsAny(lower, "hola", "buenos días", "buenas tardes", "buenas") {
		s.setStage(StageDiscovery)
		return "¡Hola! Soy Carlos, tu asesor de ventas. Encantado de ayudarte a encontrar tu próximo coche. Cuéntame, ¿qué tipo de vehículo estás buscando? ¿Tienes alguna marca, color o presupuesto en mente?"
	}

	s.setStage(StageDiscovery)
	return "Cuéntame un poco más sobre lo que buscas: presupuesto aproximado, tipo de coche, color preferido... Así puedo enseñarte las mejores opciones de nuestro inventario."
}

func (s *System) setStage(stage SalesStage) {
	s.mu.Lock()
	if s.stage != stage {
		s.logActionLocked(RoleCarlos, "stage_transition", fmt.Sprintf("%s -> %s", s.stage, stage))
		s.stage = stage
	}
	s.mu.Unlock()
}

// Stage returns the current sales stage.
func (s *System) Stage() SalesStage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Profile returns a copy of the customer profile.
func (s *System) Profile() CustomerProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Notes returns a copy of the sales agent's note pad.
func (s *System) Notes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.notes))
	copy(out, s.notes)
	return out
}

// Communications returns a copy of the inter-agent message log.
func (s *System) Communications() []Communication {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Communication, len(s.comms))
	copy(out, s.comms)
	return out
}

// Analytics summarizes the conversation for the analytics endpoint.
type Analytics struct {
	TotalInteractions   int         `json:"total_interactions"`
	AgentCommunications int         `json:"agent_communications"`
	CurrentSalesStage   SalesStage  `json:"current_sales_stage"`
	ProfileCompleteness float64     `json:"customer_profile_completeness"`
	RecentActions       []string    `json:"recent_actions"`
	CommunicationFlow   [][2]string `json:"communication_flow"`
}

// ConversationAnalytics reports conversation metrics.
func (s *System) ConversationAnalytics() Analytics {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := Analytics{
		TotalInteractions:   len(s.actions),
		AgentCommunications: len(s.comms),
		CurrentSalesStage:   s.stage,
		ProfileCompleteness: s.profile.Completeness(),
	}
	start := len(s.actions) - 5
	if start < 0 {
		start = 0
	}
	for _, act := range s.actions[start:] {
		a.RecentActions = append(a.RecentActions, act.Name)
	}
	start = len(s.comms) - 5
	if start < 0 {
		start = 0
	}
	for _, c := range s.comms[start:] {
		a.CommunicationFlow = append(a.CommunicationFlow, [2]string{string(c.From), string(c.To)})
	}
	return a
}

func (s *System) logAction(agent Role, name, details string) {
	s.mu.Lock()
	s.logActionLocked(agent, name, details)
	s.mu.Unlock()
}

func (s *System) logActionLocked(agent Role, name, details string) {
	s.actions = append(s.actions, Action{
		Timestamp: time.Now().UTC(),
		Agent:     agent,
		Name:      name,
		Details:   details,
	})
	s.log.Info("agent action", "agent", agent, "action", name)
}

func (s *System) logComm(ctx context.Context, from, to Role, msgType, content string) {
	c := Communication{
		From:      from,
		To:        to,
		Type:      msgType,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	s.mu.Lock()
	s.comms = append(s.comms, c)
	s.mu.Unlock()
	s.log.Info("agent communication", "from", from, "to", to, "type", msgType)
	if s.bus != nil {
		s.bus.Publish(ctx, c)
	}
}
