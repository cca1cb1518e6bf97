package format

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/MirkoGilioli/open-weather-mcp-server/pkg/client"
)

func decodeWeather(t *testing.T, raw string) *client.CurrentWeatherResponse {
	t.Helper()
	var w client.CurrentWeatherResponse
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	return &w
}

func TestWeatherShort(t *testing.T) {
	w := decodeWeather(t, `{"name":"London","sys":{"country":"GB"},"main":{"temp":15.2},"weather":[{"description":"clear sky"}]}`)

	got := WeatherShort(w)
	want := "London, GB: 15.2°C, clear sky"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWeatherShortMissingPlace(t *testing.T) {
	// Both name and country absent: no dangling separators.
	w := decodeWeather(t, `{"main":{"temp":15.2},"weather":[{"description":"clear sky"}]}`)
	if got := WeatherShort(w); got != "15.2°C, clear sky" {
		t.Fatalf("expected bare clause, got %q", got)
	}

	// Country only.
	w = decodeWeather(t, `{"sys":{"country":"GB"},"main":{"temp":15.2},"weather":[{"description":"clear sky"}]}`)
	if got := WeatherShort(w); got != "GB: 15.2°C, clear sky" {
		t.Fatalf("expected country-only place, got %q", got)
	}
}

func TestWeatherShortUnparsable(t *testing.T) {
	w := decodeWeather(t, `{"name":"London"}`)
	if got := WeatherShort(w); got != "Unable to parse weather data" {
		t.Fatalf("expected diagnostic, got %q", got)
	}
	if got := WeatherShort(nil); got != "Unable to parse weather data" {
		t.Fatalf("expected diagnostic for nil payload, got %q", got)
	}
}

func TestFormattingIdempotent(t *testing.T) {
	w := decodeWeather(t, `{"name":"London","sys":{"country":"GB"},"main":{"temp":15.2},"weather":[{"description":"clear sky"}]}`)
	if first, second := WeatherShort(w), WeatherShort(w); first != second {
		t.Fatalf("formatting not idempotent: %q vs %q", first, second)
	}
}

func TestPollutantOrdering(t *testing.T) {
	// Key order in the payload must not matter; absent pollutants are omitted.
	var a client.AirPollutionResponse
	raw := `{"list":[{"main":{"aqi":2},"components":{"co":0.5,"pm2_5":1.234}}]}`
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	got := AirPollutionCurrent(&a)
	want := "AQI: 2. Components: PM2_5=1.23, CO=0.50"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestAirPollutionCurrentUnparsable(t *testing.T) {
	if got := AirPollutionCurrent(&client.AirPollutionResponse{}); got != "Unable to parse air pollution data" {
		t.Fatalf("expected diagnostic for empty list, got %q", got)
	}
}

func TestAirPollutionForecast(t *testing.T) {
	var a client.AirPollutionResponse
	raw := `{"list":[
		{"dt":1700000000,"main":{"aqi":1},"components":{"pm10":3.456,"nh3":0.789}},
		{"dt":1700010800,"main":{"aqi":3},"components":{"o3":60.1}},
		{"dt":1700021600,"main":{"aqi":2},"components":{"no2":10}}
	]}`
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	got := AirPollutionForecast(&a, 2)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 entries, got %d lines: %q", len(lines), got)
	}
	if lines[0] != "Air pollution forecast:" {
		t.Fatalf("unexpected header: %q", lines[0])
	}

	wantFirst := fmt.Sprintf("%s — AQI 1: PM10=3.46, NH3=0.79", time.Unix(1700000000, 0).Format("2006-01-02 15:04"))
	if lines[1] != wantFirst {
		t.Fatalf("expected %q, got %q", wantFirst, lines[1])
	}
}

func TestForecastSlotLimiting(t *testing.T) {
	var f client.ForecastResponse
	f.City.Name = "London"
	for i := 0; i < 40; i++ {
		var entry client.ForecastEntry
		entry.Dt = int64(1700000000 + i*10800)
		temp := 10.0 + float64(i)
		entry.Main.Temp = &temp
		entry.Weather = []struct {
			Description string `json:"description"`
		}{{Description: "clear sky"}}
		f.List = append(f.List, entry)
	}

	got := ForecastShort(&f, 3)
	lines := strings.Split(got, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 slots, got %d lines", len(lines))
	}
	if lines[0] != "5-day / 3-hour forecast for London (first 3 slots):" {
		t.Fatalf("unexpected header: %q", lines[0])
	}

	// Entries come from the head of the list in provider order.
	wantFirst := fmt.Sprintf("%s: 10°C, clear sky", time.Unix(1700000000, 0).Format("2006-01-02 15:04"))
	if lines[1] != wantFirst {
		t.Fatalf("expected %q, got %q", wantFirst, lines[1])
	}
	wantThird := fmt.Sprintf("%s: 12°C, clear sky", time.Unix(1700021600, 0).Format("2006-01-02 15:04"))
	if lines[3] != wantThird {
		t.Fatalf("expected %q, got %q", wantThird, lines[3])
	}
}

func TestForecastShortUnknownCity(t *testing.T) {
	var f client.ForecastResponse
	got := ForecastShort(&f, 5)
	if got != "5-day / 3-hour forecast for Unknown (first 5 slots):" {
		t.Fatalf("unexpected output for empty forecast: %q", got)
	}
}

func TestForecastShortUnparsableEntry(t *testing.T) {
	var f client.ForecastResponse
	f.City.Name = "London"
	f.List = []client.ForecastEntry{{Dt: 1700000000}}

	if got := ForecastShort(&f, 5); got != "Unable to parse forecast data" {
		t.Fatalf("expected diagnostic, got %q", got)
	}
}
