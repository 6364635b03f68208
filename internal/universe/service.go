package universe

import (
	"log/slog"
	"sync"
	"time"

	"orbitarium-server/internal/shared/config"
	apperrors "orbitarium-server/internal/shared/errors"
)

// Service owns the live universe and runs the frame loop. The engine itself
// is single-threaded; every access from HTTP handlers and from the ticker
// goes through the service's lock, so within any one operation the core
// sees strictly sequential access.
type Service struct {
	mu       sync.Mutex
	universe *Universe

	running  bool
	simSpeed float64
	policy   MuPolicy

	frameRate int
	stop      chan struct{}
	done      chan struct{}

	logger *slog.Logger
}

// SimInfo is the universe status reported to clients.
type SimInfo struct {
	Time      float64  `json:"time"`
	G         float64  `json:"g"`
	BodyCount int      `json:"body_count"`
	SimSpeed  float64  `json:"sim_speed"`
	Running   bool     `json:"running"`
	MuPolicy  MuPolicy `json:"mu_policy"`
}

func NewService(u *Universe, cfg config.SimulationConfig) *Service {
	return &Service{
		universe:  u,
		running:   cfg.StartRunning,
		simSpeed:  cfg.DefaultSimSpeed,
		policy:    KeepElements,
		frameRate: cfg.FrameRate,
		logger:    slog.With("component", "universe_service"),
	}
}

// Start launches the frame loop: simulation time advances by
// dt * simSpeed per frame while running.
func (s *Service) Start() {
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	interval := time.Second / time.Duration(s.frameRate)
	s.logger.Info("Starting simulation loop", "frame_rate", s.frameRate, "sim_speed", s.simSpeed)

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		last := time.Now()
		for {
			select {
			case <-s.stop:
				return
			case now := <-ticker.C:
				dt := now.Sub(last).Seconds()
				last = now

				s.mu.Lock()
				if s.running {
					s.universe.Tick(dt * s.simSpeed)
				}
				s.mu.Unlock()
			}
		}
	}()
}

// Shutdown stops the frame loop and waits for it to exit.
func (s *Service) Shutdown() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.logger.Info("Simulation loop stopped")
}

// Read runs fn with shared access to the universe. The universe must not be
// mutated inside fn; the distinction from Write is documentation only, both
// hold the same lock.
func (s *Service) Read(fn func(u *Universe) error) error {
	return s.Write(fn)
}

// Write runs fn with exclusive access to the universe.
func (s *Service) Write(fn func(u *Universe) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.universe)
}

// Info reports the current simulation status.
func (s *Service) Info() SimInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SimInfo{
		Time:      s.universe.Time(),
		G:         s.universe.G(),
		BodyCount: s.universe.BodyCount(),
		SimSpeed:  s.simSpeed,
		Running:   s.running,
		MuPolicy:  s.policy,
	}
}

// MuPolicy returns the policy applied to mass and g edits.
func (s *Service) MuPolicy() MuPolicy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy
}

// Settings is the mutable subset of simulation configuration. Nil fields
// are left unchanged.
type Settings struct {
	G        *float64  `json:"g,omitempty"`
	SimSpeed *float64  `json:"sim_speed,omitempty"`
	Running  *bool     `json:"running,omitempty"`
	MuPolicy *MuPolicy `json:"mu_policy,omitempty"`
	Time     *float64  `json:"time,omitempty"`
}

// ApplySettings updates simulation settings. A g change resynchronizes
// every dependent orbit under the current policy.
func (s *Service) ApplySettings(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if settings.MuPolicy != nil {
		policy, err := ParseMuPolicy(string(*settings.MuPolicy))
		if err != nil {
			return err
		}
		s.policy = policy
	}
	if settings.SimSpeed != nil {
		s.simSpeed = *settings.SimSpeed
	}
	if settings.Running != nil {
		s.running = *settings.Running
	}
	if settings.Time != nil {
		s.universe.SetTime(*settings.Time)
	}
	if settings.G != nil {
		if *settings.G <= 0 {
			return apperrors.Validation("g must be positive")
		}
		s.universe.SetGravitationalConstant(*settings.G, s.policy)
	}

	s.logger.Info("Simulation settings updated",
		"running", s.running, "sim_speed", s.simSpeed, "mu_policy", s.policy)
	return nil
}

// Step advances time manually, used while the loop is paused.
func (s *Service) Step(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.universe.Tick(dt)
}

// Reset swaps in a freshly built universe.
func (s *Service) Reset(u *Universe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.universe = u
	s.logger.Info("Universe reset", "bodies", u.BodyCount())
}
