package contracts

import "time"

type InputFlags struct {
	ConfigPath    string
	Output        string
	Title         string
	Encoder       string
	Progress      string
	LogLevel      string
	LogFormat     string
	DPI           float64
	Workers       int
	FetchRetries  int
	FetchTimeout  time.Duration
	Parallel      bool
	DPIFromSource bool
	NoColor       bool
}
