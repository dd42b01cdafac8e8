package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/ir-dimmer/internal/status"
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
	"onOff": func(on bool) string {
		if on {
			return "ON"
		}
		return "OFF"
	},
	"percent": func(level uint8) int {
		return (int(level)*100 + 127) / 255
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>IR Dimmer</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>IR Dimmer</h1>

<h2>Output</h2>
<table>
<tr><th>Power</th><td id="power" class="{{if .View.State.Power}}on{{else}}off{{end}}">{{onOff .View.State.Power}}</td></tr>
<tr><th>Level</th><td id="level">{{.View.State.Level}} ({{percent .View.State.Level}}%)</td></tr>
<tr><th>PWM duty</th><td id="output">{{.View.State.Output}}</td></tr>
</table>

<h2>Stored</h2>
<table>
<tr><th>Power</th><td>{{onOff .View.Committed.Power}}</td></tr>
<tr><th>Level</th><td>{{.View.Committed.Level}}</td></tr>
<tr><th>Commits</th><td>{{.View.Commits}}</td></tr>
<tr><th>Last commit</th><td>{{if .LastCommit.IsZero}}never{{else}}{{.LastCommit.UTC.Format "2006-01-02T15:04:05Z"}}{{end}}</td></tr>
</table>

<h2>Indicator</h2>
<table>
<tr><th>LED</th><td class="{{if .View.Indicator}}on{{else}}off{{end}}">{{onOff .View.Indicator}}</td></tr>
<tr><th>Owner</th><td>{{.View.Owner}}</td></tr>
<tr><th>Receiving</th><td>{{if .View.IRActive}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>IR device</th><td>{{if .Config.LIRC}}{{.Config.LIRC}}{{else}}disabled{{end}}</td></tr>
<tr><th>EEPROM</th><td>{{.Config.EEPROM}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
<script>
(function() {
  var power = document.getElementById("power");
  var level = document.getElementById("level");
  var output = document.getElementById("output");

  function refresh() {
    fetch("/index.json").then(function(r) { return r.json(); }).then(function(msg) {
      var s = msg.status;
      power.textContent = s.power;
      power.className = s.power === "ON" ? "on" : "off";
      level.textContent = s.level + " (" + Math.round(s.level * 100 / 255) + "%)";
      output.textContent = s.output;
    }).catch(function() {});
  }

  setInterval(refresh, 1000);
})();
</script>
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
