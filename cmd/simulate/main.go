package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/hackgods/carehub/internal/config"
	"github.com/hackgods/carehub/internal/identity"
	"github.com/hackgods/carehub/internal/logger"
)

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	Patients     int
	Providers    int
	RequestRatio float64
	TransitRatio float64
	ReadRatio    float64
	Admin        identity.Caller
	TokenTTL     time.Duration
}

// DataPool holds the ids the workers draw from. Consultation ids are added as
// requests succeed.
type DataPool struct {
	Patients      []identity.Caller
	Providers     []string
	mu            sync.RWMutex
	consultations []created
}

type created struct {
	ID      string
	Patient identity.Caller
}

func (dp *DataPool) AddConsultation(c created) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.consultations = append(dp.consultations, c)
}

func (dp *DataPool) RandomConsultation(rng *rand.Rand) (created, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.consultations) == 0 {
		return created{}, false
	}
	return dp.consultations[rng.Intn(len(dp.consultations))], true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, status int, err error) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case err == nil && status >= 200 && status < 300:
		atomic.AddInt64(&om.Success, 1)
	case err == nil && status == http.StatusConflict:
		atomic.AddInt64(&om.Conflict, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	om.mu.Unlock()

	if len(latencies) == 0 {
		return 0, 0, 0, 0, 0
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]
	return avg, min, max, p50, p95
}

func percentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type Metrics struct {
	Request    OperationMetrics
	Transition OperationMetrics
	ReadByID   OperationMetrics
	List       OperationMetrics
	History    OperationMetrics
}

type Simulator struct {
	config   SimConfig
	pool     *DataPool
	client   *http.Client
	verifier *identity.Verifier
	metrics  Metrics

	tokensMu sync.Mutex
	tokens   map[identity.Caller]string
}

func main() {
	baseCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	logger.New(os.Stdout, baseCfg.LogLevel, baseCfg.Env)

	cfg := loadSimConfig(baseCfg)
	if err := validateSimConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid simulator config")
	}

	log.Info().
		Dur("duration", cfg.Duration).
		Int("workers", cfg.Workers).
		Float64("request", cfg.RequestRatio).
		Float64("transition", cfg.TransitRatio).
		Float64("read", cfg.ReadRatio).
		Msg("simulator starting")

	sim := &Simulator{
		config:   cfg,
		pool:     &DataPool{},
		client:   &http.Client{Timeout: 10 * time.Second},
		verifier: identity.NewVerifier([]byte(baseCfg.JWTSecret), baseCfg.JWTIssuer, baseCfg.JWTAudience),
		tokens:   make(map[identity.Caller]string),
	}

	setupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sim.Setup(setupCtx); err != nil {
		log.Fatal().Err(err).Msg("setup")
	}

	log.Info().
		Int("patients", len(sim.pool.Patients)).
		Int("providers", len(sim.pool.Providers)).
		Msg("data pool ready")

	sim.Run()
	sim.PrintReport(os.Stdout)
}

func loadSimConfig(base config.Config) SimConfig {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("SIM_API_BASE_URL", "http://localhost:8080")
	v.SetDefault("SIM_DURATION", "30s")
	v.SetDefault("SIM_WORKERS", 10)
	v.SetDefault("SIM_PATIENTS", 200)
	v.SetDefault("SIM_PROVIDERS", 20)
	v.SetDefault("SIM_REQUEST_RATIO", 0.4)
	v.SetDefault("SIM_TRANSITION_RATIO", 0.2)
	v.SetDefault("SIM_READ_RATIO", 0.4)

	cfg := SimConfig{
		APIBaseURL:   strings.TrimRight(v.GetString("SIM_API_BASE_URL"), "/"),
		Duration:     v.GetDuration("SIM_DURATION"),
		Workers:      v.GetInt("SIM_WORKERS"),
		Patients:     v.GetInt("SIM_PATIENTS"),
		Providers:    v.GetInt("SIM_PROVIDERS"),
		RequestRatio: v.GetFloat64("SIM_REQUEST_RATIO"),
		TransitRatio: v.GetFloat64("SIM_TRANSITION_RATIO"),
		ReadRatio:    v.GetFloat64("SIM_READ_RATIO"),
		Admin:        identity.Caller(base.BootstrapAdmin),
		TokenTTL:     time.Hour,
	}

	total := cfg.RequestRatio + cfg.TransitRatio + cfg.ReadRatio
	if total > 0 {
		cfg.RequestRatio /= total
		cfg.TransitRatio /= total
		cfg.ReadRatio /= total
	}
	if cfg.Duration > cfg.TokenTTL {
		cfg.TokenTTL = cfg.Duration + time.Minute
	}
	return cfg
}

func validateSimConfig(cfg SimConfig) error {
	if cfg.Admin.IsAnonymous() {
		return fmt.Errorf("BOOTSTRAP_ADMIN is required so the simulator can add providers and confirm bookings")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.Patients <= 0 || cfg.Providers <= 0 {
		return fmt.Errorf("SIM_PATIENTS and SIM_PROVIDERS must be > 0")
	}
	return nil
}

// Setup registers providers as the admin and invents patient callers.
func (s *Simulator) Setup(ctx context.Context) error {
	faker := gofakeit.New(0)

	for i := 0; i < s.config.Providers; i++ {
		id := "sim-prov-" + uuid.NewString()[:8]
		body := map[string]any{
			"id":             id,
			"name":           "Dr. " + faker.Name(),
			"specialization": faker.JobTitle(),
			"location":       faker.City(),
			"online":         faker.Bool(),
		}
		status, _, err := s.call(ctx, s.config.Admin, http.MethodPost, "/api/v1/providers", body)
		if err != nil {
			return fmt.Errorf("add provider: %w", err)
		}
		if status != http.StatusCreated {
			return fmt.Errorf("add provider: unexpected status %d", status)
		}
		s.pool.Providers = append(s.pool.Providers, id)
	}

	for i := 0; i < s.config.Patients; i++ {
		s.pool.Patients = append(s.pool.Patients, identity.Caller("sim-patient-"+uuid.NewString()[:8]))
	}
	return nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	log.Info().Msg("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for ctx.Err() == nil {
		r := rng.Float64()
		switch {
		case r < s.config.RequestRatio:
			s.doRequest(ctx, rng)
		case r < s.config.RequestRatio+s.config.TransitRatio:
			s.doTransition(ctx, rng)
		default:
			switch rng.Intn(3) {
			case 0:
				s.doReadByID(ctx, rng)
			case 1:
				s.doList(ctx, rng)
			case 2:
				s.doHistory(ctx, rng)
			}
		}
	}
}

func (s *Simulator) doRequest(ctx context.Context, rng *rand.Rand) {
	patient := s.pool.Patients[rng.Intn(len(s.pool.Patients))]
	body := map[string]any{
		"provider_id": s.pool.Providers[rng.Intn(len(s.pool.Providers))],
		"time":        time.Now().Add(time.Duration(rng.Intn(30*24)) * time.Hour).UnixNano(),
		"modality":    modalities[rng.Intn(len(modalities))],
	}

	start := time.Now()
	status, resp, err := s.call(ctx, patient, http.MethodPost, "/api/v1/consultations", body)
	s.metrics.Request.Record(time.Since(start), status, err)

	if err == nil && status == http.StatusCreated {
		var out struct {
			ID string `json:"id"`
		}
		if json.Unmarshal(resp, &out) == nil && out.ID != "" {
			s.pool.AddConsultation(created{ID: out.ID, Patient: patient})
		}
	}
}

var modalities = []string{"video", "phone", "in_person"}

// Transitions are picked blind; invalid ones show up as conflicts.
var nextStatuses = []string{"confirmed", "confirmed", "completed", "cancelled"}

func (s *Simulator) doTransition(ctx context.Context, rng *rand.Rand) {
	c, ok := s.pool.RandomConsultation(rng)
	if !ok {
		return
	}
	body := map[string]string{"status": nextStatuses[rng.Intn(len(nextStatuses))]}

	start := time.Now()
	status, _, err := s.call(ctx, s.config.Admin, http.MethodPut, "/api/v1/consultations/"+c.ID+"/status", body)
	s.metrics.Transition.Record(time.Since(start), status, err)
}

func (s *Simulator) doReadByID(ctx context.Context, rng *rand.Rand) {
	c, ok := s.pool.RandomConsultation(rng)
	if !ok {
		return
	}
	start := time.Now()
	status, _, err := s.call(ctx, c.Patient, http.MethodGet, "/api/v1/consultations/"+c.ID, nil)
	s.metrics.ReadByID.Record(time.Since(start), status, err)
}

func (s *Simulator) doList(ctx context.Context, rng *rand.Rand) {
	patient := s.pool.Patients[rng.Intn(len(s.pool.Patients))]
	start := time.Now()
	status, _, err := s.call(ctx, patient, http.MethodGet, "/api/v1/consultations", nil)
	s.metrics.List.Record(time.Since(start), status, err)
}

func (s *Simulator) doHistory(ctx context.Context, rng *rand.Rand) {
	c, ok := s.pool.RandomConsultation(rng)
	if !ok {
		return
	}
	start := time.Now()
	status, _, err := s.call(ctx, s.config.Admin, http.MethodGet, "/api/v1/consultations/"+c.ID+"/events", nil)
	s.metrics.History.Record(time.Since(start), status, err)
}

func (s *Simulator) token(caller identity.Caller) (string, error) {
	s.tokensMu.Lock()
	defer s.tokensMu.Unlock()

	if tok, ok := s.tokens[caller]; ok {
		return tok, nil
	}
	tok, err := s.verifier.Issue(caller, s.config.TokenTTL)
	if err != nil {
		return "", err
	}
	s.tokens[caller] = tok
	return tok, nil
}

func (s *Simulator) call(ctx context.Context, caller identity.Caller, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	tok, err := s.token(caller)
	if err != nil {
		return 0, nil, fmt.Errorf("issue token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	return resp.StatusCode, data, err
}

func (s *Simulator) PrintReport(w io.Writer) {
	line := strings.Repeat("=", 80)
	fmt.Fprintln(w, "\n"+line)
	fmt.Fprintln(w, "SIMULATION REPORT")
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "Duration: %s\n", s.config.Duration)
	fmt.Fprintf(w, "Workers: %d\n\n", s.config.Workers)

	printOperationReport(w, "Request", &s.metrics.Request)
	printOperationReport(w, "Transition", &s.metrics.Transition)
	printOperationReport(w, "Read by ID", &s.metrics.ReadByID)
	printOperationReport(w, "List", &s.metrics.List)
	printOperationReport(w, "History", &s.metrics.History)
}

func printOperationReport(w io.Writer, name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failed := atomic.LoadInt64(&om.Error)
	avg, min, max, p50, p95 := om.Stats()

	fmt.Fprintf(w, "%s:\n", name)
	fmt.Fprintf(w, "  Total: %d\n", total)
	fmt.Fprintf(w, "  Success: %d (%.1f%%)\n", success, pct(success, total))
	if conflict > 0 {
		fmt.Fprintf(w, "  Conflicts: %d (%.1f%%)\n", conflict, pct(conflict, total))
	}
	if failed > 0 {
		fmt.Fprintf(w, "  Errors: %d (%.1f%%)\n", failed, pct(failed, total))
	}
	fmt.Fprintf(w, "  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
}

func pct(n, total int64) float64 {
	return float64(n) / float64(total) * 100
}
