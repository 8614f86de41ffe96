package tools

import (
	"context"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
	"strings"
)

// WeatherToolName is the function name the model uses for weather lookups.
const WeatherToolName = "getWeather"

// Weather is a simulated weather report for one place.
type Weather struct {
	Location    string `json:"location"`
	Temperature string `json:"temperature"`
	Condition   string `json:"condition"`
	Humidity    string `json:"humidity,omitempty"`
}

type weatherEntry struct {
	keys   []string
	report Weather
}

// Порядок важен: первый совпавший ключ выигрывает
var defaultWeather = []weatherEntry{
	{keys: []string{"ঢাকা", "dhaka"}, report: Weather{Location: "ঢাকা", Temperature: "32°C", Condition: "বজ্রসহ বৃষ্টি", Humidity: "80%"}},
	{keys: []string{"চট্টগ্রাম", "chittagong", "chattogram"}, report: Weather{Location: "চট্টগ্রাম", Temperature: "29°C", Condition: "মেঘলা আকাশ", Humidity: "85%"}},
	{keys: []string{"রাজশাহী", "rajshahi"}, report: Weather{Location: "রাজশাহী", Temperature: "35°C", Condition: "রৌদ্রোজ্জ্বল", Humidity: "70%"}},
}

const weatherUnknownCondition = "ডেটা পাওয়া যায়নি"

// WeatherTool answers getWeather calls from a fixed table; it never touches the network.
type WeatherTool struct {
	entries []weatherEntry
}

// NewWeatherTool creates a WeatherTool over the built-in table.
func NewWeatherTool() *WeatherTool {
	return &WeatherTool{entries: defaultWeather}
}

func (w *WeatherTool) Name() string { return WeatherToolName }

func (w *WeatherTool) Declaration() models.FunctionDeclaration {
	return models.FunctionDeclaration{
		Name:        WeatherToolName,
		Description: "একটি নির্দিষ্ট স্থানের বর্তমান আবহাওয়ার তথ্য দেয়।",
		Parameters: &models.Schema{
			Type: models.TypeObject,
			Properties: map[string]*models.Schema{
				"location": {
					Type:        models.TypeString,
					Description: "শহর বা গ্রামের নাম, যেমন: ঢাকা",
				},
			},
			Required: []string{"location"},
		},
	}
}

// Call looks the location up and returns {"result": Weather}.
func (w *WeatherTool) Call(_ context.Context, args map[string]any) (map[string]any, error) {
	location, _ := args["location"].(string)
	return map[string]any{"result": w.Lookup(location)}, nil
}

// Lookup matches the location case-insensitively by substring; unknown places get a
// placeholder report that still names the requested location.
func (w *WeatherTool) Lookup(location string) Weather {
	needle := strings.ToLower(strings.TrimSpace(location))
	if needle != "" {
		for _, e := range w.entries {
			for _, key := range e.keys {
				if strings.Contains(needle, key) {
					return e.report
				}
			}
		}
	}
	return Weather{Location: location, Temperature: "unknown", Condition: weatherUnknownCondition}
}
