package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/i474232898/cosmic-weather/internal/store"
	"github.com/i474232898/cosmic-weather/internal/weather"
)

const defaultWidth = 80

// View implements tea.Model.
func (m Model) View() string {
	st := stylesFor(m.snapshot.Theme)

	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	inner := max(width-4, 20)

	sections := []string{
		st.Title.Render("Cosmic Weather") + "  " + st.Muted.Render(string(m.snapshot.Theme)),
		st.Panel.Width(inner).Render(m.renderAstronomy(st, inner-2)),
		st.Panel.Width(inner).Render(m.renderWeather(st)),
	}

	if m.searching {
		sections = append(sections, m.search.View())
	}
	if m.notice != "" {
		sections = append(sections, st.Danger.Render(m.notice))
	}
	sections = append(sections, m.renderHelp(st))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderAstronomy(st styles, width int) string {
	s := m.snapshot
	var b strings.Builder
	b.WriteString(st.Heading.Render("Astronomy Picture of the Day"))
	b.WriteString("\n")

	if line := m.statusLine(st, s.AstronomyStatus); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}

	rec := s.Astronomy
	if rec == nil {
		if !s.AstronomyStatus.Loading && s.AstronomyStatus.Error == "" {
			b.WriteString(st.Muted.Render("Nothing loaded yet."))
		}
		return b.String()
	}

	title := st.Accent.Render(rec.Title)
	if s.IsCurrentFavorite() {
		title += " " + st.Star.Render("★")
	}
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(st.Muted.Render(rec.Date))
	if rec.Copyright != "" {
		b.WriteString(st.Muted.Render(" · © " + strings.TrimSpace(rec.Copyright)))
	}
	b.WriteString("\n")

	media := "Image"
	if rec.IsVideo() {
		media = "Video"
	}
	b.WriteString(st.Text.Render(fmt.Sprintf("%s: %s", media, rec.URL)))
	b.WriteString("\n")
	if rec.HDURL != "" {
		b.WriteString(st.Text.Render("HD: " + rec.HDURL))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(st.Text.Width(width).Render(rec.Explanation))
	return b.String()
}

func (m Model) renderWeather(st styles) string {
	s := m.snapshot
	var b strings.Builder
	heading := "Weather"
	if s.City != "" {
		heading += " in " + s.City
	}
	b.WriteString(st.Heading.Render(heading))
	b.WriteString("\n")

	if line := m.statusLine(st, s.WeatherStatus); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}

	w := s.Weather
	if w == nil {
		if !s.WeatherStatus.Loading && s.WeatherStatus.Error == "" {
			b.WriteString(st.Muted.Render("Nothing loaded yet."))
		}
		return b.String()
	}

	location := w.LocationName
	if w.CountryCode != "" {
		location += ", " + w.CountryCode
	}
	b.WriteString(st.Accent.Render(location))
	b.WriteString("\n")
	b.WriteString(st.Text.Render(fmt.Sprintf("%s %.1f°C (feels like %.1f°C)  %s",
		conditionGlyph(w.ConditionMain), w.TemperatureC, w.FeelsLikeC, w.ConditionDescription)))
	b.WriteString("\n")
	b.WriteString(st.Muted.Render(fmt.Sprintf("Humidity %.0f%%  Pressure %.0f hPa  Wind %.1f m/s  Visibility %.1f km",
		w.HumidityPct, w.PressureHpa, w.WindSpeedMS, w.VisibilityM/1000)))
	return b.String()
}

func (m Model) statusLine(st styles, fs store.FetchStatus) string {
	switch {
	case fs.Loading:
		return m.spinner.View() + st.Muted.Render(" Loading...")
	case fs.Error != "":
		return st.Danger.Render(fs.Error)
	}
	return ""
}

func (m Model) renderHelp(st styles) string {
	parts := make([]string, 0, 6)
	for _, b := range m.keys.helpLine() {
		h := b.Help()
		parts = append(parts, st.Accent.Render(h.Key)+" "+st.Muted.Render(h.Desc))
	}
	return strings.Join(parts, st.Muted.Render(" • "))
}

func conditionGlyph(c weather.Condition) string {
	switch c {
	case weather.ConditionClear:
		return "☀"
	case weather.ConditionClouds:
		return "☁"
	case weather.ConditionRain, weather.ConditionDrizzle:
		return "☂"
	case weather.ConditionSnow:
		return "❄"
	case weather.ConditionThunderstorm:
		return "⚡"
	case weather.ConditionMist, weather.ConditionFog:
		return "≋"
	}
	return "•"
}
