// Package ical renders scheduled workouts as an iCalendar (RFC 5545) document.
package ical

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const prodID = "-//workout-scheduler//Workout Calendar//EN"

// Event is one VEVENT.
type Event struct {
	UID         string
	Summary     string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	Status      string // TENTATIVE, CONFIRMED or CANCELLED
	Reminder    int    // minutes before start, 0 disables the alarm
}

// Render builds a VCALENDAR containing events. stamp becomes every DTSTAMP.
func Render(calendarName string, events []Event, stamp time.Time) string {
	var sb strings.Builder

	sb.WriteString("BEGIN:VCALENDAR\r\n")
	sb.WriteString("VERSION:2.0\r\n")
	sb.WriteString("PRODID:" + prodID + "\r\n")
	sb.WriteString("CALSCALE:GREGORIAN\r\n")
	sb.WriteString("METHOD:PUBLISH\r\n")
	if calendarName != "" {
		writeLine(&sb, "X-WR-CALNAME:"+escape(calendarName))
	}

	for _, event := range events {
		sb.WriteString("BEGIN:VEVENT\r\n")
		writeLine(&sb, "UID:"+event.UID)
		sb.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatTime(stamp)))
		sb.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatTime(event.StartTime)))
		sb.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatTime(event.EndTime)))
		writeLine(&sb, "SUMMARY:"+escape(event.Summary))
		if event.Description != "" {
			writeLine(&sb, "DESCRIPTION:"+escape(event.Description))
		}
		if event.Status != "" {
			sb.WriteString("STATUS:" + event.Status + "\r\n")
		}
		if event.Reminder > 0 {
			sb.WriteString("BEGIN:VALARM\r\n")
			sb.WriteString("ACTION:DISPLAY\r\n")
			sb.WriteString(fmt.Sprintf("TRIGGER:-PT%dM\r\n", event.Reminder))
			writeLine(&sb, "DESCRIPTION:"+escape(event.Summary))
			sb.WriteString("END:VALARM\r\n")
		}
		sb.WriteString("END:VEVENT\r\n")
	}

	sb.WriteString("END:VCALENDAR\r\n")
	return sb.String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func escape(s string) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// writeLine folds content lines so that no physical line exceeds 75 octets,
// counting the leading space of continuation lines.
func writeLine(sb *strings.Builder, line string) {
	const limit = 75
	width := limit
	for len(line) > width {
		cut := width
		// don't split a UTF-8 sequence; a valid one has at most 3 continuation bytes
		for back := 0; back < utf8.UTFMax-1 && line[cut]&0xC0 == 0x80; back++ {
			cut--
		}
		if line[cut]&0xC0 == 0x80 {
			cut = width
		}
		sb.WriteString(line[:cut])
		sb.WriteString("\r\n ")
		line = line[cut:]
		width = limit - 1
	}
	sb.WriteString(line)
	sb.WriteString("\r\n")
}
