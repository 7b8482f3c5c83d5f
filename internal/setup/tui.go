// Package setup implements the interactive first-run wizard. It asks
// for a single DCA strategy and writes a strategies file the bot can
// load on the next start.
package setup

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const defaultStrategiesFile = "strategies.yaml"

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)
)

type strategyYaml struct {
	Period     string   `yaml:"period"`
	Amount     string   `yaml:"amount"`
	QuoteAsset string   `yaml:"quote_asset"`
	Assets     []string `yaml:"assets"`
	Exchanges  []string `yaml:"exchanges"`
}

type fileYaml struct {
	CycleInterval string         `yaml:"cycle_interval"`
	Strategies    []strategyYaml `yaml:"strategies"`
}

// RunWizard collects one strategy interactively and writes it to
// strategies.yaml. Returns the written path.
func RunWizard() (string, error) {
	var (
		period    string
		amount    string
		quote     string
		assets    string
		exchanges []string
		confirm   bool
	)

	// defaults
	quote = "USDT"
	amount = "10"

	fmt.Println(headerStyle.Render("STACKER SETUP"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Describe your recurring buy and we'll save it.\n"))

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How often should the bot buy?").
				Options(
					huh.NewOption("Daily", "daily"),
					huh.NewOption("Weekly", "weekly"),
					huh.NewOption("Monthly", "monthly"),
				).
				Value(&period),
			huh.NewInput().
				Title("Amount per asset per cycle").
				Description("In quote currency, e.g. 10").
				Value(&amount).
				Validate(func(s string) error {
					d, err := decimal.NewFromString(s)
					if err != nil {
						return fmt.Errorf("not a number: %s", s)
					}
					if d.LessThanOrEqual(decimal.Zero) {
						return fmt.Errorf("amount must be positive")
					}
					return nil
				}),
			huh.NewInput().
				Title("Quote asset").
				Description("The currency you pay with").
				Value(&quote).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("quote asset cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Assets to accumulate").
				Description("Comma separated, e.g. BTC,ETH").
				Value(&assets).
				Validate(func(s string) error {
					if len(splitAssets(s)) == 0 {
						return fmt.Errorf("at least one asset is required")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Exchanges to buy on").
				Options(
					huh.NewOption("Binance", "binance"),
					huh.NewOption("Bybit", "bybit"),
					huh.NewOption("Hyperliquid", "hyperliquid"),
				).
				Value(&exchanges).
				Validate(func(selected []string) error {
					if len(selected) == 0 {
						return fmt.Errorf("pick at least one exchange")
					}
					return nil
				}),
			huh.NewConfirm().
				Title(fmt.Sprintf("Write %s?", defaultStrategiesFile)).
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return "", err
	}
	if !confirm {
		return "", fmt.Errorf("setup cancelled")
	}

	out := fileYaml{
		CycleInterval: cycleIntervalFor(period),
		Strategies: []strategyYaml{{
			Period:     period,
			Amount:     amount,
			QuoteAsset: strings.ToUpper(strings.TrimSpace(quote)),
			Assets:     splitAssets(assets),
			Exchanges:  exchanges,
		}},
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(defaultStrategiesFile, data, 0o644); err != nil {
		return "", err
	}

	fmt.Printf("Saved %s. Put your API keys in keys.yaml and restart.\n", defaultStrategiesFile)
	return defaultStrategiesFile, nil
}

func splitAssets(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func cycleIntervalFor(period string) string {
	switch period {
	case "weekly":
		return (7 * 24 * time.Hour).String()
	case "monthly":
		return (30 * 24 * time.Hour).String()
	default:
		return (24 * time.Hour).String()
	}
}
