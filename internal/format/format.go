// Package format turns raw OpenWeather payloads into short human-readable
// summaries. Formatting is best-effort: a malformed payload produces a fixed
// diagnostic string, never an error or a panic.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MirkoGilioli/open-weather-mcp-server/pkg/client"
)

const (
	unparsableWeather      = "Unable to parse weather data"
	unparsableForecast     = "Unable to parse forecast data"
	unparsableAirPollution = "Unable to parse air pollution data"

	slotTimeLayout = "2006-01-02 15:04"
)

// pollutantOrder fixes the rendering order of air-quality components;
// pollutants absent from the payload are skipped.
var pollutantOrder = []string{"pm2_5", "pm10", "no2", "o3", "so2", "co", "nh3"}

// WeatherShort renders current conditions as
// "<name>, <country>: <temp>°C, <description>". A missing name or country
// collapses the place prefix without leaving dangling separators.
func WeatherShort(w *client.CurrentWeatherResponse) string {
	if w == nil || w.Main.Temp == nil {
		return unparsableWeather
	}

	var desc string
	if len(w.Weather) > 0 {
		desc = w.Weather[0].Description
	}

	clause := formatTemp(*w.Main.Temp) + "°C, " + desc

	place := w.Name
	if w.Sys.Country != "" {
		if place != "" {
			place += ", " + w.Sys.Country
		} else {
			place = w.Sys.Country
		}
	}
	if place == "" {
		return clause
	}
	return place + ": " + clause
}

// ForecastShort renders the first limit slots of the 5-day/3-hour forecast,
// one line per slot in provider (chronological) order, under a header naming
// the city and slot count.
func ForecastShort(f *client.ForecastResponse, limit int) string {
	if f == nil {
		return unparsableForecast
	}

	city := f.City.Name
	if city == "" {
		city = "Unknown"
	}

	lines := []string{fmt.Sprintf("5-day / 3-hour forecast for %s (first %d slots):", city, limit)}
	for _, entry := range head(f.List, limit) {
		if entry.Main.Temp == nil || len(entry.Weather) == 0 {
			return unparsableForecast
		}
		ts := time.Unix(entry.Dt, 0).Format(slotTimeLayout)
		lines = append(lines, fmt.Sprintf("%s: %s°C, %s", ts, formatTemp(*entry.Main.Temp), entry.Weather[0].Description))
	}
	return strings.Join(lines, "\n")
}

// AirPollutionCurrent renders the first entry of a current air-quality
// payload as "AQI: <n>. Components: <K>=<v>, ..." in fixed pollutant order.
func AirPollutionCurrent(a *client.AirPollutionResponse) string {
	if a == nil || len(a.List) == 0 {
		return unparsableAirPollution
	}

	entry := a.List[0]
	if entry.Main.AQI == nil {
		return unparsableAirPollution
	}

	return fmt.Sprintf("AQI: %d. Components: %s", *entry.Main.AQI, componentParts(entry.Components))
}

// AirPollutionForecast renders the first limit entries of an air-quality
// forecast payload, one line each, under a fixed header.
func AirPollutionForecast(a *client.AirPollutionResponse, limit int) string {
	if a == nil {
		return unparsableAirPollution
	}

	lines := []string{"Air pollution forecast:"}
	for _, entry := range head(a.List, limit) {
		if entry.Main.AQI == nil {
			return unparsableAirPollution
		}
		ts := time.Unix(entry.Dt, 0).Format(slotTimeLayout)
		lines = append(lines, fmt.Sprintf("%s — AQI %d: %s", ts, *entry.Main.AQI, componentParts(entry.Components)))
	}
	return strings.Join(lines, "\n")
}

func componentParts(components map[string]float64) string {
	parts := make([]string, 0, len(pollutantOrder))
	for _, name := range pollutantOrder {
		if value, ok := components[name]; ok {
			parts = append(parts, fmt.Sprintf("%s=%.2f", strings.ToUpper(name), value))
		}
	}
	return strings.Join(parts, ", ")
}

// formatTemp prints a temperature with the shortest exact representation,
// so 15.2 stays "15.2" rather than "15.200000".
func formatTemp(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func head[T any](list []T, limit int) []T {
	if limit < 0 {
		limit = 0
	}
	if limit > len(list) {
		limit = len(list)
	}
	return list[:limit]
}
