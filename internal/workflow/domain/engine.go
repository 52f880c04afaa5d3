package domain

import (
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// Precondition names a sub-workflow completeness check gating an edge.
type Precondition string

const (
	PreconditionInspectionsCompleted Precondition = "inspections_completed"
	PreconditionChecklistComplete    Precondition = "checklist_complete"
	PreconditionReportApproved       Precondition = "report_approved"
	PreconditionReportCompleted      Precondition = "report_completed"

	// PreconditionProjectInFieldWork guards schedule event completion.
	PreconditionProjectInFieldWork Precondition = "project_in_field_work"
)

var knownPreconditions = []Precondition{
	PreconditionInspectionsCompleted,
	PreconditionChecklistComplete,
	PreconditionReportApproved,
	PreconditionReportCompleted,
}

// Edge is one permitted project status change.
type Edge struct {
	From      ProjectStatus
	To        ProjectStatus
	Roles     []Role
	Requires  []Precondition
	Rejection bool
	Cancel    bool
}

// RequiresNotes reports whether the caller must explain the move.
func (e Edge) RequiresNotes() bool {
	return e.Rejection
}

// Decision is the outcome of CanTransition. Err is nil when Allowed.
type Decision struct {
	Allowed bool
	Reason  string
	Edge    Edge
	Role    Role
	Err     error
}

func deny(err error) Decision {
	return Decision{Reason: err.Error(), Err: err}
}

//go:embed transitions.yaml
var transitionsYAML []byte

type edgeDoc struct {
	From      string   `yaml:"from"`
	To        string   `yaml:"to"`
	Roles     []string `yaml:"roles"`
	Requires  []string `yaml:"requires"`
	Rejection bool     `yaml:"rejection"`
}

type tableDoc struct {
	Edges  []edgeDoc `yaml:"edges"`
	Cancel struct {
		To    string   `yaml:"to"`
		Roles []string `yaml:"roles"`
	} `yaml:"cancel"`
}

// Engine decides project transitions from an edge table.
type Engine struct {
	edges       map[ProjectStatus][]Edge
	cancelTo    ProjectStatus
	cancelRoles []Role
}

var defaultEngine = mustLoadEngine(transitionsYAML)

// DefaultEngine returns the engine built from the embedded transition table.
func DefaultEngine() *Engine {
	return defaultEngine
}

func mustLoadEngine(data []byte) *Engine {
	engine, err := LoadEngine(data)
	if err != nil {
		panic(fmt.Sprintf("workflow: invalid transition table: %v", err))
	}
	return engine
}

// LoadEngine parses and validates a YAML edge table. A forward edge must not
// move backward in the canonical ordering or skip a phase; a rejection edge
// must move backward.
func LoadEngine(data []byte) (*Engine, error) {
	var doc tableDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	engine := &Engine{edges: make(map[ProjectStatus][]Edge)}
	seen := make(map[[2]ProjectStatus]bool)

	for i, raw := range doc.Edges {
		edge, err := parseEdge(raw)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		key := [2]ProjectStatus{edge.From, edge.To}
		if seen[key] {
			return nil, fmt.Errorf("edge %d: duplicate %s -> %s", i, edge.From, edge.To)
		}
		seen[key] = true
		engine.edges[edge.From] = append(engine.edges[edge.From], edge)
	}

	cancelTo, err := ParseProjectStatus(doc.Cancel.To)
	if err != nil {
		return nil, fmt.Errorf("cancel: %w", err)
	}
	if !IsTerminal(cancelTo) {
		return nil, fmt.Errorf("cancel target %s is not terminal", cancelTo)
	}
	cancelRoles, err := parseRoles(doc.Cancel.Roles)
	if err != nil {
		return nil, fmt.Errorf("cancel: %w", err)
	}
	engine.cancelTo = cancelTo
	engine.cancelRoles = cancelRoles

	return engine, nil
}

func parseEdge(raw edgeDoc) (Edge, error) {
	from, err := ParseProjectStatus(raw.From)
	if err != nil {
		return Edge{}, err
	}
	to, err := ParseProjectStatus(raw.To)
	if err != nil {
		return Edge{}, err
	}
	roles, err := parseRoles(raw.Roles)
	if err != nil {
		return Edge{}, err
	}
	edge := Edge{From: from, To: to, Roles: roles, Rejection: raw.Rejection}

	for _, name := range raw.Requires {
		p := Precondition(name)
		if !slices.Contains(knownPreconditions, p) {
			return Edge{}, fmt.Errorf("unknown precondition %q", name)
		}
		edge.Requires = append(edge.Requires, p)
	}

	if IsTerminal(from) {
		return Edge{}, fmt.Errorf("%s is terminal and cannot have outgoing edges", from)
	}
	if to == StatusCancelled {
		return Edge{}, fmt.Errorf("cancellation belongs in the cancel block")
	}

	fromPhase, _ := PhaseOf(from)
	toPhase, _ := PhaseOf(to)
	if edge.Rejection {
		if Rank(to) >= Rank(from) {
			return Edge{}, fmt.Errorf("rejection edge %s -> %s does not move backward", from, to)
		}
		return edge, nil
	}
	if Rank(to) <= Rank(from) {
		return Edge{}, fmt.Errorf("forward edge %s -> %s moves backward", from, to)
	}
	if toPhase-fromPhase > 1 {
		return Edge{}, fmt.Errorf("edge %s -> %s skips a phase", from, to)
	}
	return edge, nil
}

func parseRoles(raw []string) ([]Role, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("at least one role is required")
	}
	roles := make([]Role, 0, len(raw))
	for _, r := range raw {
		role, err := ParseRole(r)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}

// CanTransition decides whether role may move a project from current to requested.
func (e *Engine) CanTransition(current, requested ProjectStatus, role Role) Decision {
	return e.CanTransitionAny(current, requested, []Role{role})
}

// CanTransitionAny decides the move for an actor holding several roles. The
// first held role permitted on the edge is reported in Decision.Role.
func (e *Engine) CanTransitionAny(current, requested ProjectStatus, roles []Role) Decision {
	edge, err := e.edge(current, requested)
	if err != nil {
		return deny(err)
	}

	role, ok := hasAnyRole(roles, edge.Roles)
	if !ok {
		return deny(ErrIllegalTransition(fmt.Sprintf(
			"moving a project from %s to %s requires role %s", current, requested, joinRoles(edge.Roles))))
	}

	return Decision{
		Allowed: true,
		Reason:  fmt.Sprintf("%s may move %s -> %s", role, current, requested),
		Edge:    edge,
		Role:    role,
	}
}

// Transition returns the edge for the move or the reason it is refused.
func (e *Engine) Transition(current, requested ProjectStatus, role Role) (Edge, error) {
	d := e.CanTransition(current, requested, role)
	if !d.Allowed {
		return Edge{}, d.Err
	}
	return d.Edge, nil
}

// AvailableTransitions lists the statuses reachable from current by any of roles.
func (e *Engine) AvailableTransitions(current ProjectStatus, roles []Role) []ProjectStatus {
	if !current.Valid() || IsTerminal(current) {
		return nil
	}
	var out []ProjectStatus
	for _, edge := range e.edges[current] {
		if _, ok := hasAnyRole(roles, edge.Roles); ok {
			out = append(out, edge.To)
		}
	}
	if _, ok := hasAnyRole(roles, e.cancelRoles); ok {
		out = append(out, e.cancelTo)
	}
	return out
}

// Edges returns the outgoing edges of from, excluding cancellation.
func (e *Engine) Edges(from ProjectStatus) []Edge {
	return slices.Clone(e.edges[from])
}

func (e *Engine) edge(current, requested ProjectStatus) (Edge, error) {
	if !current.Valid() {
		return Edge{}, ErrUnknownStatus(string(current))
	}
	if !requested.Valid() {
		return Edge{}, ErrUnknownStatus(string(requested))
	}
	if IsTerminal(current) {
		return Edge{}, ErrTerminalState("project", string(current))
	}
	if current == requested {
		return Edge{}, ErrIllegalTransition(fmt.Sprintf("project is already %s", current))
	}
	if requested == e.cancelTo {
		return Edge{From: current, To: e.cancelTo, Roles: e.cancelRoles, Cancel: true}, nil
	}

	for _, edge := range e.edges[current] {
		if edge.To == requested {
			return edge, nil
		}
	}

	fromPhase, _ := PhaseOf(current)
	toPhase, _ := PhaseOf(requested)
	switch {
	case toPhase-fromPhase > 1:
		return Edge{}, ErrIllegalTransition(fmt.Sprintf(
			"cannot skip from phase %d (%s) to phase %d (%s)", fromPhase, fromPhase, toPhase, toPhase))
	case Rank(requested) < Rank(current):
		return Edge{}, ErrIllegalTransition(fmt.Sprintf(
			"%s -> %s is not a rejection edge; projects only move backward through rejections", current, requested))
	default:
		return Edge{}, ErrIllegalTransition(fmt.Sprintf("no transition from %s to %s", current, requested))
	}
}

// CanTransition decides a move with the default engine.
func CanTransition(current, requested ProjectStatus, role Role) Decision {
	return defaultEngine.CanTransition(current, requested, role)
}

// AvailableTransitions lists reachable statuses with the default engine.
func AvailableTransitions(current ProjectStatus, roles []Role) []ProjectStatus {
	return defaultEngine.AvailableTransitions(current, roles)
}
