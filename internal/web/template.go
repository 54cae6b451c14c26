package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/gas-alarm/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"phaseOrStarting": func(s string) string {
		if s == "" {
			return "STARTING"
		}
		return s
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="10">
<title>Gas Alarm</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.armed { color: green; font-weight: bold; }
.alert { color: red; font-weight: bold; }
.pending { color: orange; }
.empty { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Gas Alarm</h1>

<h2>State</h2>
<table>
<tr><th>Phase</th><td class="{{if .Alerting}}alert{{else if .Armed}}armed{{else}}pending{{end}}">{{phaseOrStarting (printf "%s" .Phase)}}</td></tr>
<tr><th>Reading</th><td>{{if .HasReading}}{{.LastReading}}{{else}}-{{end}} / {{.Config.Threshold}}</td></tr>
<tr><th>Restart pending</th><td>{{if .RestartPending}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Registered Numbers</h2>
<table>
{{range $i, $s := .Slots}}<tr><th>Slot {{$i}}</th><td class="{{if $s.Occupied}}armed{{else}}empty{{end}}">{{if $s.Occupied}}{{$s.Number}}{{else}}empty{{end}}</td></tr>
{{end}}</table>

<h2>Connectivity</h2>
<table>
<tr><th>GSM network</th><td class="{{if .NetworkOK}}connected{{else}}disconnected{{end}}">{{if .NetworkOK}}registered{{else}}searching{{end}}</td></tr>
<tr><th>Modem port</th><td>{{.Config.Port}}</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Alarms</th><td>{{.Counts.Alarms}}</td></tr>
<tr><th>Calls placed</th><td>{{.Counts.Dials}}</td></tr>
<tr><th>Acknowledged</th><td>{{.Counts.Acks}}</td></tr>
<tr><th>Registrations</th><td>{{.Counts.Registrations}}</td></tr>
<tr><th>Deletions</th><td>{{.Counts.Deletions}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot's methods are flattened into fields for the template.
	data := struct {
		status.Snapshot
		Uptime   time.Duration
		Armed    bool
		Alerting bool
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Armed:    snap.Armed(),
		Alerting: snap.Alerting(),
	}
	indexTmpl.Execute(w, data)
}
