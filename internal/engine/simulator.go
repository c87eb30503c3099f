package engine

import (
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"security-suite/internal/model"
	"security-suite/pkg/wellknown"
)

const (
	// DefaultInterval is the period between two synthetic connections.
	DefaultInterval = 2500 * time.Millisecond
	// TimestampLayout renders the capture time the way the log view shows it.
	TimestampLayout = "15:04:05"
)

// Catalog lists the values the simulator samples from.
type Catalog struct {
	Apps  []string
	IPs   []string
	Ports []int
}

func DefaultCatalog() Catalog {
	return Catalog{
		Apps:  []string{"Chrome", "System", "GameClient", "svchost.exe", "Discord", "Unknown Process"},
		IPs:   []string{"8.8.8.8", "192.168.1.75", "104.18.3.96", "45.137.21.112", "72.21.91.29", "208.67.222.222"},
		Ports: []int{443, 80, 8080, 27015, 6667, 5222, 4444},
	}
}

type Observer func(model.NetworkLogEntry)

type SimulatorOption func(*Simulator)

func WithClock(clock clockwork.Clock) SimulatorOption {
	return func(s *Simulator) { s.clock = clock }
}

// WithRand replaces the random source; a seeded source makes the generated
// sequence reproducible.
func WithRand(r *rand.Rand) SimulatorOption {
	return func(s *Simulator) { s.rnd = r }
}

func WithCatalog(c Catalog) SimulatorOption {
	return func(s *Simulator) { s.catalog = c }
}

func WithLogger(l *slog.Logger) SimulatorOption {
	return func(s *Simulator) { s.logger = l }
}

// Simulator produces one classified connection every DefaultInterval while
// running.
type Simulator struct {
	rules   *RuleStore
	log     *TrafficLog
	catalog Catalog
	clock   clockwork.Clock
	logger  *slog.Logger

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}

	obsMu     sync.RWMutex
	observers []Observer
}

func NewSimulator(rules *RuleStore, log *TrafficLog, opts ...SimulatorOption) *Simulator {
	s := &Simulator{
		rules:   rules,
		log:     log,
		catalog: DefaultCatalog(),
		clock:   clockwork.NewRealClock(),
		logger:  slog.Default(),
		rnd:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Observe registers fn to be called with every new entry.
func (s *Simulator) Observe(fn Observer) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, fn)
}

// Start begins a fresh periodic cadence. Calling it while running does
// nothing.
func (s *Simulator) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	ticker := s.clock.NewTicker(DefaultInterval)
	go s.loop(ticker, s.stop, s.done)
	s.logger.Info("Traffic simulator started", "interval", DefaultInterval)
}

// Stop cancels the periodic timer. Once it returns no further tick runs.
// Stopping a stopped simulator is a no-op.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stop)
	<-s.done
	s.running = false
	s.logger.Info("Traffic simulator stopped", "retained", s.log.Len())
}

func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Simulator) loop(ticker clockwork.Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			select {
			case <-stop:
				return
			default:
			}
			s.Tick()
		}
	}
}

// Generate draws one synthetic connection. Every field is sampled
// independently and uniformly.
func (s *Simulator) Generate() model.Traffic {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	t := model.Traffic{
		AppName:   s.catalog.Apps[s.rnd.IntN(len(s.catalog.Apps))],
		IP:        s.catalog.IPs[s.rnd.IntN(len(s.catalog.IPs))],
		Port:      s.catalog.Ports[s.rnd.IntN(len(s.catalog.Ports))],
		Direction: model.Outbound,
		Protocol:  model.UDP,
	}
	if s.rnd.IntN(2) == 0 {
		t.Direction = model.Inbound
	}
	if s.rnd.IntN(2) == 0 {
		t.Protocol = model.TCP
	}
	return t
}

// Tick generates, classifies and records a single entry.
func (s *Simulator) Tick() model.NetworkLogEntry {
	return s.Record(s.Generate())
}

// Record classifies traffic against the current rules and prepends the
// resulting entry to the log.
func (s *Simulator) Record(traffic model.Traffic) model.NetworkLogEntry {
	match := Classify(s.rules.List(), traffic)
	now := s.clock.Now()

	entry := model.NetworkLogEntry{
		ID:         newEntryID(),
		Timestamp:  now.Local().Format(TimestampLayout),
		CapturedAt: now,
		AppName:    traffic.AppName,
		IP:         traffic.IP,
		Port:       traffic.Port,
		Direction:  traffic.Direction,
		Protocol:   traffic.Protocol,
		Status:     match.Status,
		Service:    wellknown.Name(traffic.Port, traffic.Protocol),
	}
	if match.Rule != nil {
		entry.RuleID = match.Rule.ID
	}
	s.log.Add(entry)
	s.logger.Debug("Traffic classified", "app", entry.AppName, "ip", entry.IP, "port", entry.Port, "status", entry.Status, "reason", match.Reason)

	s.obsMu.RLock()
	observers := s.observers
	s.obsMu.RUnlock()
	for _, fn := range observers {
		fn(entry)
	}
	return entry
}

func newEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
