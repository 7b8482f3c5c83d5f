package config

import "flag"

// Flags are the command-line inputs of the bot.
type Flags struct {
	// StrategiesPath yaml file with the DCA strategies. Empty means the
	// interactive setup wizard should run first.
	StrategiesPath string
	// KeysPath yaml file with per-exchange API keys.
	KeysPath string
	// Sandbox routes orders to exchange testnets.
	Sandbox bool
}

// ParseFlags reads the command line.
func ParseFlags() Flags {
	strategies := flag.String("strategies", "", "path to the strategies yaml file")
	keys := flag.String("keys", "keys.yaml", "path to the exchange API keys yaml file")
	sandbox := flag.Bool("test", false, "use exchange testnets")
	flag.Parse()

	return Flags{
		StrategiesPath: *strategies,
		KeysPath:       *keys,
		Sandbox:        *sandbox,
	}
}
