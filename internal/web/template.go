package web

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/sweeney/thermal-monitor/internal/display"
	"github.com/sweeney/thermal-monitor/internal/indicator"
	"github.com/sweeney/thermal-monitor/internal/logic"
	"github.com/sweeney/thermal-monitor/internal/status"
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
	"celsius": func(v float32) string {
		return fmt.Sprintf("%.2f °C", v)
	},
	"classCSS": func(c logic.Class) string {
		return strings.ToLower(c.String())
	},
	"frame": func(lines []display.Line) string {
		var sb strings.Builder
		for _, l := range lines {
			sb.WriteString(l.Text)
			sb.WriteByte('\n')
		}
		return sb.String()
	},
	"matrix": func(p logic.Pattern) string {
		g, ok := indicator.GlyphFor(p)
		if !ok {
			return ".....\n.....\n.....\n.....\n....."
		}
		return strings.Join(g.Rows(), "\n")
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Thermal Monitor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
pre { background: #111; color: #eee; padding: 8px; display: inline-block; margin: 0 1em 0 0; vertical-align: top; }
.normal { color: green; font-weight: bold; }
.attention { color: #c90; font-weight: bold; }
.alert { color: red; font-weight: bold; }
.critical { color: white; background: red; font-weight: bold; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Thermal Monitor</h1>

<h2>State</h2>
{{if .Ready}}{{with .Report}}
<table>
<tr><th>Temperature</th><td>{{if .Snapshot.Degraded}}<span class="unknown">unavailable</span>{{else}}{{celsius .Snapshot.Temperature}}{{end}}</td></tr>
<tr><th>Linear forecast</th><td>{{celsius .Snapshot.PredictedLinear}}</td></tr>
<tr><th>Holt forecast</th><td>{{celsius .Snapshot.PredictedHolt}}</td></tr>
<tr><th>Threshold</th><td>{{.Snapshot.Threshold}} °C</td></tr>
<tr><th>Status</th><td class="{{classCSS .Class}}">{{.Class}}</td></tr>
<tr><th>Screen</th><td>{{.Snapshot.Screen}}{{if not .Snapshot.Configured}} (not configured){{end}}</td></tr>
<tr><th>LEDs</th><td>green {{if .Indicator.Green}}on{{else}}off{{end}}, red {{if .Indicator.Red}}on{{else}}off{{end}}</td></tr>
</table>
<pre>{{frame .Lines}}</pre><pre>{{matrix .Indicator.Pattern}}</pre>
{{end}}{{else}}
<p class="unknown">Waiting for the first cycle</p>
{{end}}

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Client ID</th><td>{{.Config.ClientID}}</td></tr>
{{if .Config.RedisAddr}}<tr><th>Redis mirror</th><td>{{.Config.RedisAddr}}</td></tr>{{end}}
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Counters</h2>
<table>
<tr><th>Samples accepted</th><td>{{.Report.Counts.Accepted}}</td></tr>
<tr><th>Samples discarded</th><td>{{.Report.Counts.Discarded}}</td></tr>
<tr><th>Read errors</th><td>{{.Report.Counts.ReadErrors}}</td></tr>
<tr><th>Commands</th><td>{{.Report.Counts.Commands}}</td></tr>
<tr><th>Queue drops</th><td>{{.Report.Counts.Dropped}}</td></tr>
<tr><th>Degraded reads</th><td>{{.Report.Counts.Degraded}}</td></tr>
<tr><th>Published</th><td>{{.Report.Counts.Published}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Cycles</th><td>{{.Cycles}}{{if .Ready}} (last {{.ReportAge.Milliseconds}}ms ago){{end}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Sample period</th><td>{{.Config.SamplePeriodMs}}ms</td></tr>
<tr><th>Horizon</th><td>{{.Config.HorizonSeconds}}s ({{.Config.ClassifyWith}})</td></tr>
<tr><th>Telemetry</th><td>{{.Config.TelemetryMs}}ms</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
{{if .Config.Simulate}}<tr><th>Hardware</th><td class="unknown">simulated</td></tr>{{end}}
</table>

<p><a href="/index.json">JSON</a> · <a href="/metrics">metrics</a> · <a href="/healthz">health</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
