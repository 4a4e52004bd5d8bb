package report

const reportHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://cdn.jsdelivr.net/npm/chart.js@4.4.1/dist/chart.umd.min.js"></script>
<script src="https://cdn.jsdelivr.net/npm/chartjs-plugin-annotation@3.0.1/dist/chartjs-plugin-annotation.min.js"></script>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Helvetica, Arial, sans-serif;
       max-width: 960px; margin: 2rem auto; padding: 0 1rem; color: #1f2328; }
h1 { border-bottom: 2px solid #d0d7de; padding-bottom: .4rem; }
.meta { color: #656d76; font-size: .9rem; }
table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
th, td { border: 1px solid #d0d7de; padding: .35rem .6rem; text-align: right; }
th:first-child, td:first-child { text-align: left; }
th { background: #f6f8fa; }
.chart { margin: 1.5rem 0; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Report {{.ID}} &middot; generated {{fmtTS .GeneratedAt}} &middot; source: {{.Source}}</p>
<p class="meta">Rows read: {{.Stats.RowsRead}} &middot; rows skipped: {{.Stats.RowsSkipped}}</p>

<h2>Summary statistics</h2>
<table id="summary">
<thead>
<tr><th>Field</th><th>Count</th><th>Mean</th><th>Min</th><th>Max</th><th>Std dev</th></tr>
</thead>
<tbody>
{{range .Summaries}}<tr><td>{{.Field}}</td><td>{{.Count}}</td><td>{{fmtNum .Mean}}</td><td>{{fmtNum .Min}}</td><td>{{fmtNum .Max}}</td><td>{{fmtNum .StdDev}}</td></tr>
{{end}}</tbody>
</table>

<h2>Anomalies ({{len .Anomalies}})</h2>
{{if .Anomalies}}
<table id="anomalies">
<thead>
<tr><th>Date</th><th>Field</th><th>Value</th><th>Score</th><th>Reason</th></tr>
</thead>
<tbody>
{{range .Anomalies}}<tr><td>{{fmtDay .Time}}</td><td>{{.Field}}</td><td>{{fmtNum .Value}}</td><td>{{fmtNum .Score}}</td><td>{{.Reason}}</td></tr>
{{end}}</tbody>
</table>
{{else}}
<p>No anomalies at the configured threshold.</p>
{{end}}

{{range .Charts}}
<div class="chart"><canvas id="{{.ID}}"></canvas></div>
{{end}}

<script>
const charts = {{js .Charts}};
for (const spec of charts) {
  const ctx = document.getElementById(spec.id);
  if (!ctx) continue;
  if (spec.kind === "timeseries") {
    const labels = (spec.series[0] ? spec.series[0].points : []).map(p => p.time.slice(0, 10));
    const datasets = spec.series.map((s, i) => ({
      label: s.name,
      data: s.points.map(p => ({x: p.time.slice(0, 10), y: p.value})),
      borderColor: i === 0 ? "#0969da" : "#cf222e",
      pointRadius: 0,
      borderWidth: 1.5,
    }));
    if (spec.anomalies && spec.anomalies.length) {
      datasets.push({
        label: "anomalies",
        type: "scatter",
        data: spec.anomalies.map(p => ({x: p.time.slice(0, 10), y: p.value})),
        backgroundColor: "#cf222e",
        pointRadius: 4,
      });
    }
    const annotations = {};
    (spec.bands || []).forEach((b, i) => {
      annotations["hot" + i] = {
        type: "box",
        xMin: b.start.slice(0, 10),
        xMax: b.end.slice(0, 10),
        backgroundColor: "rgba(207, 34, 46, 0.12)",
        borderWidth: 0,
      };
    });
    (spec.cold_bands || []).forEach((b, i) => {
      annotations["cold" + i] = {
        type: "box",
        xMin: b.start.slice(0, 10),
        xMax: b.end.slice(0, 10),
        backgroundColor: "rgba(9, 105, 218, 0.12)",
        borderWidth: 0,
      };
    });
    new Chart(ctx, {type: "line", data: {labels, datasets},
      options: {plugins: {title: {display: true, text: spec.title}, annotation: {annotations}}}});
  } else if (spec.kind === "histogram") {
    new Chart(ctx, {type: "bar", data: {
      labels: spec.bins.map(b => b.low.toFixed(2) + ".." + b.high.toFixed(2)),
      datasets: [{label: spec.y_label, data: spec.bins.map(b => b.count), backgroundColor: "#0969da"}],
    }, options: {plugins: {title: {display: true, text: spec.title}}}});
  } else if (spec.kind === "seasons") {
    new Chart(ctx, {type: "bar", data: {
      labels: spec.seasons.map(s => s.year),
      datasets: [{label: spec.y_label, data: spec.seasons.map(s => s.total),
        backgroundColor: spec.seasons.map(s => s.low ? "#bf8700" : "#0969da")}],
    }, options: {plugins: {title: {display: true, text: spec.title}}}});
  } else if (spec.kind === "monthly") {
    new Chart(ctx, {type: "bar", data: {
      labels: spec.boxes.map(b => b.month),
      datasets: [
        {label: "median", data: spec.boxes.map(b => b.median), backgroundColor: "#0969da"},
        {label: "min", data: spec.boxes.map(b => b.min), backgroundColor: "#d0d7de"},
        {label: "max", data: spec.boxes.map(b => b.max), backgroundColor: "#656d76"},
      ],
    }, options: {plugins: {title: {display: true, text: spec.title}}}});
  }
}
</script>
</body>
</html>
`
