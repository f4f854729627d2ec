package daemon

// StartOptions configures the daemon (home, port, sweep interval, DB, metrics).
type StartOptions struct {
	Home             string
	Port             int
	SweepIntervalSec float64 // how often the send sweep runs; 0 means 60s
	Dev              bool
	PprofAddr        string
	DBDriver         string // "sqlite" (default) or "postgres"
	DBURL            string // for postgres: connection string (or DATABASE_URL env)
	EnableOtel       bool   // enable OpenTelemetry metrics (Prometheus exporter + HTTP instrumentation)
}

// StatusInfo is the result of Status (running or not, PID, listen addr).
type StatusInfo struct {
	Running bool
	PID     int
	Addr    string
}
