package eval

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/shale-sh/shale/config"
	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/logger"
	"github.com/shale-sh/shale/observability"
	"github.com/shale-sh/shale/source"
)

// EngineState holds everything that outlives a single evaluation: the
// command registry, the block registry closures point into, the source
// registry the error renderer reads, the runtime config, and the
// session identity. Safe for concurrent use; parallel stages resolve
// commands while the REPL registers new ones.
type EngineState struct {
	mu       sync.RWMutex
	commands map[string]Command
	names    []string
	blocks   []*Block
	sources  map[string]*source.Text

	cfg     *config.RuntimeConfig
	log     *logger.Logger
	session uuid.UUID
	metrics *observability.Metrics
}

// NewEngineState creates an empty engine. A nil cfg gets defaults; a
// nil log gets the package default logger.
func NewEngineState(cfg *config.RuntimeConfig, log *logger.Logger) *EngineState {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.NewDefault("shale")
	}
	return &EngineState{
		commands: make(map[string]Command),
		sources:  make(map[string]*source.Text),
		cfg:      cfg,
		log:      log,
		session:  uuid.New(),
	}
}

// SessionID identifies this engine instance in logs and traces.
func (es *EngineState) SessionID() uuid.UUID {
	return es.session
}

// SetMetrics installs metric instruments. Nil (the default) disables
// metric recording.
func (es *EngineState) SetMetrics(m *observability.Metrics) {
	es.metrics = m
}

// Metrics returns the installed instruments, or nil.
func (es *EngineState) Metrics() *observability.Metrics {
	return es.metrics
}

// Config returns the runtime configuration.
func (es *EngineState) Config() *config.RuntimeConfig {
	return es.cfg
}

// Logger returns the engine's component logger.
func (es *EngineState) Logger() *logger.Logger {
	return es.log
}

// RegisterCommand adds a command under its first signature's name.
// Registering an existing name is an error.
func (es *EngineState) RegisterCommand(cmd Command) error {
	name, err := commandName(cmd)
	if err != nil {
		return err
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	if _, exists := es.commands[name]; exists {
		return fmt.Errorf("command %q is already registered", name)
	}
	es.commands[name] = cmd
	es.names = append(es.names, name)
	return nil
}

// UpsertCommand adds or replaces a command. Redefinition is how def
// reloads a command in a live session.
func (es *EngineState) UpsertCommand(cmd Command) error {
	name, err := commandName(cmd)
	if err != nil {
		return err
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	if _, exists := es.commands[name]; !exists {
		es.names = append(es.names, name)
	}
	es.commands[name] = cmd
	return nil
}

func commandName(cmd Command) (string, error) {
	sigs := cmd.Signatures()
	if len(sigs) == 0 {
		return "", fmt.Errorf("command has no signatures")
	}
	name := sigs[0].Name
	if name == "" {
		return "", fmt.Errorf("command signature has no name")
	}
	for _, sig := range sigs[1:] {
		if sig.Name != name {
			return "", fmt.Errorf("command %q has an overload named %q", name, sig.Name)
		}
	}
	return name, nil
}

// Command resolves a registered command by name.
func (es *EngineState) Command(name string) (Command, bool) {
	es.mu.RLock()
	defer es.mu.RUnlock()
	cmd, ok := es.commands[name]
	return cmd, ok
}

// CommandNames returns all registered names in registration order.
func (es *EngineState) CommandNames() []string {
	es.mu.RLock()
	defer es.mu.RUnlock()
	out := make([]string, len(es.names))
	copy(out, es.names)
	return out
}

// AddBlock registers a block and returns its id. Closure values refer
// to blocks by these ids.
func (es *EngineState) AddBlock(b *Block) int {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.blocks = append(es.blocks, b)
	return len(es.blocks) - 1
}

// Block resolves a block id.
func (es *EngineState) Block(id int) (*Block, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()
	if id < 0 || id >= len(es.blocks) {
		return nil, fmt.Errorf("block %d is not registered", id)
	}
	return es.blocks[id], nil
}

// AddSource registers the text behind an anchor so the error renderer
// can quote it later.
func (es *EngineState) AddSource(anchor *source.AnchorLocation, text *source.Text) {
	if anchor == nil || text == nil {
		return
	}
	es.mu.Lock()
	defer es.mu.Unlock()
	es.sources[anchor.Key()] = text
}

// LookupSource resolves an anchor to its text. Inline anchors carry
// their own text; file and url anchors resolve through the registry.
// The signature matches errors.SourceLookup.
func (es *EngineState) LookupSource(anchor *source.AnchorLocation) (*source.Text, bool) {
	if anchor == nil {
		return nil, false
	}
	if text, ok := anchor.SourceText(); ok {
		return text, true
	}
	es.mu.RLock()
	defer es.mu.RUnlock()
	text, ok := es.sources[anchor.Key()]
	return text, ok
}

// RenderError formats a shell error against the engine's registered
// sources, honoring the configured context size and color setting.
func (es *EngineState) RenderError(e *errors.ShellError) string {
	return errors.RenderWith(e, es.LookupSource, errors.RenderOptions{
		ContextLines: es.cfg.Errors.ContextLines,
		NoColor:      es.cfg.Errors.NoColor,
	})
}
