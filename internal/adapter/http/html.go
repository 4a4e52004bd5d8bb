package http

// dashboardHTML is the interactive shell. Every control change re-runs
// the full pipeline through /api/run and redraws from the response.
const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://cdn.jsdelivr.net/npm/chart.js@4.4.1/dist/chart.umd.min.js"></script>
<script src="https://cdn.jsdelivr.net/npm/chartjs-plugin-annotation@3.0.1/dist/chartjs-plugin-annotation.min.js"></script>
<style>
  body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem; color: #1a1a2e; }
  h1 { font-size: 1.4rem; }
  form#controls { display: flex; flex-wrap: wrap; gap: 0.8rem; align-items: flex-end;
    background: #f4f4f8; padding: 1rem; border-radius: 8px; margin-bottom: 1.5rem; }
  form#controls label { display: flex; flex-direction: column; font-size: 0.78rem; color: #555; }
  form#controls input, form#controls select { margin-top: 0.2rem; padding: 0.3rem; }
  button { padding: 0.45rem 1rem; border: none; border-radius: 4px;
    background: #16425b; color: #fff; cursor: pointer; }
  button.secondary { background: #6b7a8f; }
  #error { display: none; background: #fde8e8; color: #9b1c1c; padding: 0.8rem;
    border-radius: 6px; margin-bottom: 1rem; }
  #status { font-size: 0.8rem; color: #777; margin-bottom: 1rem; }
  table { border-collapse: collapse; margin-bottom: 1.5rem; font-size: 0.85rem; }
  th, td { border: 1px solid #d6d6e0; padding: 0.35rem 0.7rem; text-align: left; }
  th { background: #eceef3; }
  .chart-box { max-width: 900px; margin-bottom: 2rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>

<form id="controls">
  <label>Source
    <input type="text" name="source" value="{{.Source}}" size="40">
  </label>
  <label>Fields (comma separated, blank for all)
    <input type="text" name="fields" size="24">
  </label>
  <label>Anomaly threshold (k)
    <input type="number" name="threshold" value="{{.Threshold}}" step="0.1" min="0">
  </label>
  <label>From
    <input type="date" name="start">
  </label>
  <label>To
    <input type="date" name="end">
  </label>
  <label>Rolling window (days)
    <input type="number" name="rolling" value="{{.RollingDays}}" min="0">
  </label>
  <label>Histogram bins
    <input type="number" name="bins" value="{{.Bins}}" min="0">
  </label>
  <label>Reload source
    <input type="checkbox" name="reload">
  </label>
  <button type="submit">Run</button>
  <button type="button" class="secondary" id="export-html">Export HTML</button>
  <button type="button" class="secondary" id="export-pdf">Export PDF</button>
</form>

<div id="error"></div>
<div id="status"></div>

<h2>Summary</h2>
<table id="summary">
  <thead><tr><th>Field</th><th>Count</th><th>Mean</th><th>Min</th><th>Max</th><th>Std dev</th><th>Trend (/yr)</th></tr></thead>
  <tbody></tbody>
</table>

<h2>Anomalies</h2>
<table id="anomalies">
  <thead><tr><th>Time</th><th>Field</th><th>Value</th><th>Score</th><th>Reason</th></tr></thead>
  <tbody></tbody>
</table>

<div id="charts"></div>

<script>
const charts = [];
const form = document.getElementById("controls");

function query() {
  const params = new URLSearchParams();
  const data = new FormData(form);
  for (const key of ["source", "fields", "threshold", "start", "end", "rolling", "bins"]) {
    const v = data.get(key);
    if (v) params.set(key, v);
  }
  if (data.get("reload")) params.set("reload", "true");
  return params;
}

function showError(msg) {
  const box = document.getElementById("error");
  box.textContent = msg;
  box.style.display = msg ? "block" : "none";
}

function fmt(x) {
  return Number.parseFloat(x.toPrecision(6)).toString();
}

function fillTables(result) {
  const summary = document.querySelector("#summary tbody");
  summary.innerHTML = "";
  for (const s of result.summaries) {
    const trend = result.trends && s.field in result.trends ? fmt(result.trends[s.field]) : "";
    const row = summary.insertRow();
    for (const v of [s.field, s.count, fmt(s.mean), fmt(s.min), fmt(s.max), fmt(s.std_dev), trend]) {
      row.insertCell().textContent = v;
    }
  }
  const anomalies = document.querySelector("#anomalies tbody");
  anomalies.innerHTML = "";
  for (const a of result.anomalies || []) {
    const row = anomalies.insertRow();
    for (const v of [a.time, a.field, fmt(a.value), fmt(a.score), a.reason]) {
      row.insertCell().textContent = v;
    }
  }
}

function drawCharts(specs) {
  for (const c of charts) c.destroy();
  charts.length = 0;
  const host = document.getElementById("charts");
  host.innerHTML = "";
  for (const spec of specs || []) {
    const box = document.createElement("div");
    box.className = "chart-box";
    const canvas = document.createElement("canvas");
    box.appendChild(canvas);
    host.appendChild(box);
    charts.push(new Chart(canvas, chartConfig(spec)));
  }
}

function chartConfig(spec) {
  const opts = {
    plugins: { title: { display: true, text: spec.title } },
    scales: {
      x: { title: { display: !!spec.x_label, text: spec.x_label } },
      y: { title: { display: !!spec.y_label, text: spec.y_label } },
    },
  };
  if (spec.kind === "histogram") {
    return {
      type: "bar",
      data: {
        labels: spec.bins.map(b => fmt(b.low) + "–" + fmt(b.high)),
        datasets: [{ label: "count", data: spec.bins.map(b => b.count), backgroundColor: "#16425b" }],
      },
      options: opts,
    };
  }
  if (spec.kind === "seasons") {
    return {
      type: "bar",
      data: {
        labels: spec.seasons.map(s => s.year),
        datasets: [{
          label: "season total",
          data: spec.seasons.map(s => s.total),
          backgroundColor: spec.seasons.map(s => s.low ? "#b08968" : "#16425b"),
        }],
      },
      options: opts,
    };
  }
  if (spec.kind === "monthly") {
    return {
      type: "bar",
      data: {
        labels: spec.boxes.map(b => b.month),
        datasets: [
          { label: "median", data: spec.boxes.map(b => b.median), backgroundColor: "#16425b" },
          { label: "q1", data: spec.boxes.map(b => b.q1), backgroundColor: "#6b7a8f" },
          { label: "q3", data: spec.boxes.map(b => b.q3), backgroundColor: "#a3b2c4" },
        ],
      },
      options: opts,
    };
  }
  const datasets = spec.series.map((s, i) => ({
    label: s.name,
    data: s.points.map(p => ({ x: p.time, y: p.value })),
    borderColor: i === 0 ? "#16425b" : "#e07a5f",
    borderWidth: 1.5,
    pointRadius: 0,
  }));
  if (spec.anomalies && spec.anomalies.length > 0) {
    datasets.push({
      label: "anomalies",
      type: "scatter",
      data: spec.anomalies.map(p => ({ x: p.time, y: p.value })),
      backgroundColor: "#d62828",
      pointRadius: 4,
    });
  }
  const annotations = {};
  (spec.bands || []).forEach((b, i) => {
    annotations["hot" + i] = {
      type: "box",
      xMin: b.start,
      xMax: b.end,
      backgroundColor: "rgba(214, 40, 40, 0.12)",
      borderWidth: 0,
    };
  });
  (spec.cold_bands || []).forEach((b, i) => {
    annotations["cold" + i] = {
      type: "box",
      xMin: b.start,
      xMax: b.end,
      backgroundColor: "rgba(22, 66, 91, 0.12)",
      borderWidth: 0,
    };
  });
  return {
    type: "line",
    data: { datasets },
    options: {
      ...opts,
      plugins: { ...opts.plugins, annotation: { annotations } },
      scales: { ...opts.scales, x: { type: "category", ticks: { maxTicksLimit: 12 } } },
    },
  };
}

async function run() {
  showError("");
  document.getElementById("status").textContent = "Running…";
  const resp = await fetch("/api/run?" + query());
  const body = await resp.json();
  if (!resp.ok) {
    showError(body.error || resp.statusText);
    document.getElementById("status").textContent = "";
    return;
  }
  document.getElementById("status").textContent =
    "Rows read: " + body.stats.rows_read + ", skipped: " + body.stats.rows_skipped +
    " (" + body.first_time + " – " + body.last_time + ")";
  fillTables(body);
  drawCharts(body.charts);
}

async function exportReport(format) {
  showError("");
  const params = query();
  if (format === "pdf") params.set("format", "pdf");
  const resp = await fetch("/api/export?" + params, { method: "POST" });
  const body = await resp.json();
  if (!resp.ok) {
    showError(body.error || resp.statusText);
    return;
  }
  if (body.pdf_error) showError("PDF conversion failed: " + body.pdf_error);
  window.open("/reports/" + (body.pdf || body.html), "_blank");
}

form.addEventListener("submit", e => { e.preventDefault(); run(); });
document.getElementById("export-html").addEventListener("click", () => exportReport("html"));
document.getElementById("export-pdf").addEventListener("click", () => exportReport("pdf"));

run();
</script>
</body>
</html>
`
