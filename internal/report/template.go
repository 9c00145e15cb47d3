// internal/report/template.go
package report

import "html/template"

var dashboardTemplate = template.Must(template.New("eval-dashboard").Parse(dashboardTemplateHTML))

const dashboardTemplateHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title }}</title>
  <script src="https://cdn.jsdelivr.net/npm/chart.js@4.4.0/dist/chart.umd.min.js"></script>
  <style>
    :root {
      --primary: #334155;
      --accent: #3B82F6;
      --light: #F1F5F9;
      --background: #FFFFFF;
      --text: #0F172A;
      --border: #E2E8F0;
    }
    body {
      margin: 0;
      font-family: -apple-system, "Segoe UI", Roboto, sans-serif;
      background-color: var(--light);
      color: var(--text);
    }
    header {
      background-color: var(--primary);
      color: #fff;
      padding: 16px 24px;
    }
    header h1 { margin: 0; font-size: 1.3rem; }
    header .meta { font-size: 0.8rem; opacity: 0.7; }
    main { padding: 24px; }
    .cards { display: flex; gap: 16px; flex-wrap: wrap; margin-bottom: 24px; }
    .card {
      background: var(--background);
      border: 1px solid var(--border);
      border-radius: 10px;
      padding: 16px 20px;
      min-width: 160px;
    }
    .card .value { font-size: 1.8rem; font-weight: 600; }
    .card .label { font-size: 0.8rem; color: #64748B; text-transform: uppercase; }
    .charts { display: grid; grid-template-columns: repeat(auto-fit, minmax(380px, 1fr)); gap: 16px; margin-bottom: 24px; }
    .panel {
      background: var(--background);
      border: 1px solid var(--border);
      border-radius: 10px;
      padding: 16px;
    }
    .panel h2 { margin: 0 0 12px; font-size: 1rem; }
    .filters { margin-bottom: 16px; }
    .filters label { margin-right: 16px; font-size: 0.9rem; }
    table { width: 100%; border-collapse: collapse; font-size: 0.85rem; }
    th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid var(--border); }
    th { background: var(--light); position: sticky; top: 0; }
    .flag { display: inline-block; width: 10px; height: 10px; border-radius: 50%; }
    .flag.on { background: #10B981; }
    .flag.off { background: #CBD5E1; }
    .preview { color: #64748B; max-width: 480px; overflow: hidden; white-space: nowrap; text-overflow: ellipsis; }
  </style>
</head>
<body>
  <header>
    <h1>{{ .Title }}</h1>
    <div class="meta" id="generated-at"></div>
  </header>
  <main>
    <div class="cards" id="summary-cards"></div>
    <div class="charts">
      <div class="panel"><h2>Average latency by model (ms)</h2><canvas id="latency-chart"></canvas></div>
      <div class="panel"><h2>Score flags by model (%)</h2><canvas id="flags-chart"></canvas></div>
      <div class="panel"><h2>Runs by category</h2><canvas id="category-chart"></canvas></div>
    </div>
    <div class="panel">
      <h2>Runs</h2>
      <div class="filters" id="filters"></div>
      <table>
        <thead>
          <tr>
            <th>run_id</th><th>model</th><th>version</th><th>category</th>
            <th>latency</th><th>fmt</th><th>refusal</th><th>uncert</th><th>cite</th><th>output</th>
          </tr>
        </thead>
        <tbody id="runs-body"></tbody>
      </table>
    </div>
  </main>
  <script>
    const METRICS = {{ .MetricsJSON }};

    document.getElementById('generated-at').textContent =
      'generated ' + METRICS.generated_at + ' — ' + METRICS.total_runs + ' runs over ' + METRICS.total_prompts + ' prompts';

    const cards = document.getElementById('summary-cards');
    const addCard = (label, value) => {
      const div = document.createElement('div');
      div.className = 'card';
      div.innerHTML = '<div class="value">' + value + '</div><div class="label">' + label + '</div>';
      cards.appendChild(div);
    };
    addCard('total runs', METRICS.total_runs);
    addCard('prompts', METRICS.total_prompts);
    (METRICS.models || []).forEach(m => addCard(m.model, m.runs + ' runs'));

    const palette = ['#0078D4', '#FF8C00', '#10B981', '#8B5CF6'];
    const models = METRICS.models || [];

    new Chart(document.getElementById('latency-chart'), {
      type: 'bar',
      data: {
        labels: models.map(m => m.model),
        datasets: [{
          label: 'avg latency (ms)',
          data: models.map(m => m.avg_latency_ms),
          backgroundColor: models.map((_, i) => palette[i % palette.length]),
        }],
      },
      options: { plugins: { legend: { display: false } } },
    });

    const flagLabels = ['format followed', 'refusal correct', 'uncertainty', 'citations', 'policy risk'];
    new Chart(document.getElementById('flags-chart'), {
      type: 'bar',
      data: {
        labels: flagLabels,
        datasets: models.map((m, i) => ({
          label: m.model,
          data: [m.format_followed_pct, m.refusal_correct_pct, m.uncertainty_pct, m.citations_pct, m.policy_risk_pct],
          backgroundColor: palette[i % palette.length],
        })),
      },
      options: { scales: { y: { max: 100 } } },
    });

    const categories = {};
    models.forEach(m => {
      Object.entries(m.categories || {}).forEach(([cat, n]) => {
        categories[cat] = (categories[cat] || 0) + n;
      });
    });
    new Chart(document.getElementById('category-chart'), {
      type: 'doughnut',
      data: {
        labels: Object.keys(categories),
        datasets: [{ data: Object.values(categories), backgroundColor: palette }],
      },
    });

    const filters = document.getElementById('filters');
    const activeModels = new Set(models.map(m => m.model));
    const allCategories = [...new Set((METRICS.rows || []).map(r => r.category))];
    const activeCategories = new Set(allCategories);

    const addFilter = (name, set) => {
      const label = document.createElement('label');
      const box = document.createElement('input');
      box.type = 'checkbox';
      box.checked = true;
      box.addEventListener('change', () => {
        box.checked ? set.add(name) : set.delete(name);
        renderRows();
      });
      label.appendChild(box);
      label.appendChild(document.createTextNode(' ' + name));
      filters.appendChild(label);
    };
    models.forEach(m => addFilter(m.model, activeModels));
    allCategories.forEach(c => addFilter(c, activeCategories));

    const flag = v => '<span class="flag ' + (v ? 'on' : 'off') + '"></span>';
    const body = document.getElementById('runs-body');
    const renderRows = () => {
      body.innerHTML = '';
      (METRICS.rows || [])
        .filter(r => activeModels.has(r.model) && activeCategories.has(r.category))
        .forEach(r => {
          const tr = document.createElement('tr');
          tr.innerHTML =
            '<td>' + r.run_id + '</td><td>' + r.model + '</td><td>' + r.version + '</td><td>' + r.category + '</td>' +
            '<td>' + r.latency_ms + 'ms</td>' +
            '<td>' + flag(r.format_ok) + '</td><td>' + flag(r.refusal) + '</td>' +
            '<td>' + flag(r.uncertainty) + '</td><td>' + flag(r.citations) + '</td>' +
            '<td class="preview"></td>';
          tr.querySelector('.preview').textContent = r.output_preview;
          body.appendChild(tr);
        });
    };
    renderRows();
  </script>
</body>
</html>
`
