package domain

// weatherCodeDescriptions maps WMO weather interpretation codes, as returned
// by the Open-Meteo daily weather_code field, to human-readable labels.
// The table is closed: anything outside it is reported as unknown conditions.
var weatherCodeDescriptions = map[int]string{
	0:  "clear sky",
	1:  "mainly clear",
	2:  "partly cloudy",
	3:  "overcast",
	45: "fog",
	48: "depositing rime fog",
	51: "light drizzle",
	53: "moderate drizzle",
	55: "dense drizzle",
	56: "light freezing drizzle",
	57: "dense freezing drizzle",
	61: "light rain",
	63: "moderate rain",
	65: "heavy rain",
	66: "light freezing rain",
	67: "heavy freezing rain",
	71: "slight snowfall",
	73: "moderate snowfall",
	75: "heavy snowfall",
	77: "snow grains",
	80: "slight rain showers",
	81: "moderate rain showers",
	82: "violent rain showers",
	85: "slight snow showers",
	86: "heavy snow showers",
	95: "thunderstorm",
	96: "thunderstorm with slight hail",
	99: "thunderstorm with heavy hail",
}

// unknownConditions is the fallback label for codes outside the WMO table.
const unknownConditions = "unknown conditions"

// WeatherCodeDescription converts a WMO weather code to its description.
func WeatherCodeDescription(code int) string {
	if desc, ok := weatherCodeDescriptions[code]; ok {
		return desc
	}
	return unknownConditions
}
