package web

import "html/template"

func parsePages() map[string]*template.Template {
	pages := map[string]string{
		"home":      homeHTML,
		"login":     loginHTML,
		"dashboard": dashboardHTML,
		"logs":      logsHTML,
	}
	parsed := make(map[string]*template.Template, len(pages))
	for name, content := range pages {
		t := template.Must(template.New("layout").Parse(layoutHTML))
		parsed[name] = template.Must(t.New("content").Parse(content))
	}
	return parsed
}

const layoutHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}}</title>
  <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
  <style>
    :root { --bg:#0f1117; --panel:#181b24; --ink:#e8e8ef; --ink-soft:#8a8fa3; --accent:#7b61ff; --up:#2ecc71; --down:#e74c3c; }
    * { box-sizing:border-box; }
    body { margin:0; background:var(--bg); color:var(--ink); font-family:'Inter','Segoe UI',sans-serif; }
    nav { display:flex; gap:1.5rem; align-items:center; padding:1rem 2rem; background:var(--panel); border-bottom:1px solid #262a36; }
    nav .brand { font-weight:700; color:var(--accent); margin-right:auto; text-decoration:none; }
    nav a, nav button { color:var(--ink); text-decoration:none; background:none; border:0; font:inherit; cursor:pointer; }
    main { max-width:1200px; margin:0 auto; padding:2rem; }
    .card { background:var(--panel); border-radius:10px; padding:1.25rem; }
    .cards { display:grid; grid-template-columns:repeat(3, 1fr); gap:1rem; margin-bottom:1.5rem; }
    .card h3 { margin:0 0 .5rem; font-size:.85rem; color:var(--ink-soft); font-weight:500; }
    .card .value { font-size:1.3rem; word-break:break-all; }
    .grid { display:grid; grid-template-columns:320px 1fr; gap:1.5rem; margin-bottom:1.5rem; }
    .coins { list-style:none; margin:0; padding:0; }
    .coins li { display:flex; justify-content:space-between; padding:.6rem .5rem; border-radius:6px; cursor:pointer; }
    .coins li.selected { background:#262a36; }
    .up { color:var(--up); } .down { color:var(--down); }
    table { width:100%; border-collapse:collapse; }
    th, td { text-align:left; padding:.6rem; border-bottom:1px solid #262a36; font-size:.9rem; }
    .error { color:var(--down); margin:1rem 0; }
    .muted { color:var(--ink-soft); }
    form.login { max-width:360px; margin:3rem auto; display:flex; flex-direction:column; gap:.8rem; }
    input { padding:.7rem; border-radius:6px; border:1px solid #262a36; background:var(--bg); color:var(--ink); }
    button.primary { padding:.7rem; border-radius:6px; border:0; background:var(--accent); color:white; cursor:pointer; }
  </style>
</head>
<body>
  <nav>
    <a class="brand" href="/">Wallet Watch</a>
    {{if .LoggedIn}}
      <a href="/dashboard">Dashboard</a>
      <a href="/logs">Logs</a>
      <span class="muted">{{.Username}}</span>
      <form method="post" action="/logout"><button type="submit">Logout</button></form>
    {{else}}
      <a href="/logs">Logs</a>
      <a href="/login">Login</a>
    {{end}}
  </nav>
  <main>{{template "content" .}}</main>
</body>
</html>`

const homeHTML = `
<section class="card">
  <h1>Monitor your wallet</h1>
  <p class="muted">Track the transactions of your Ethereum wallet next to live prices of the top cryptocurrencies.</p>
  {{if .LoggedIn}}<a href="/dashboard">Open dashboard</a>{{else}}<a href="/login">Log in to get started</a>{{end}}
</section>`

const loginHTML = `
<form class="login card" method="post" action="/login">
  <h2>Login</h2>
  {{with .Error}}<div class="error">{{.}}</div>{{end}}
  <input name="username" placeholder="Username" value="{{.Form.Username}}" autocomplete="username" required />
  <input name="password" type="password" placeholder="Password" autocomplete="current-password" required />
  <button class="primary" type="submit">Log in</button>
</form>`

const logsHTML = `
<h2>Stored logs</h2>
{{with .Error}}<div class="error">{{.}}</div>{{end}}
{{with .Logs}}
  {{if .Empty}}
    {{if not $.Error}}<p class="muted">{{.EmptyMessage}}</p>{{end}}
  {{else}}
  <table>
    <thead><tr><th>Hash</th><th>From</th><th>To</th><th>Value (ETH)</th><th>Time</th></tr></thead>
    <tbody>
    {{range .Rows}}
      <tr><td title="{{.Hash}}">{{.HashShort}}</td><td title="{{.From}}">{{.FromShort}}</td><td title="{{.To}}">{{.ToShort}}</td><td>{{.Value}}</td><td>{{.Time}}</td></tr>
    {{end}}
    </tbody>
  </table>
  {{end}}
{{end}}`

const dashboardHTML = `
<div style="display:flex; justify-content:space-between; align-items:baseline;">
  <h2>Dashboard</h2>
  <span id="clock" class="muted">{{.Clock}}</span>
</div>
<div id="loading" class="muted">Loading dashboard...</div>
<div id="error" class="error" hidden></div>
{{with .Dashboard}}
<div class="cards">
  <div class="card"><h3>Wallet</h3><div class="value" id="wallet" title="{{.Wallet}}">{{.WalletShort}}</div></div>
  <div class="card"><h3>Transactions</h3><div class="value" id="tx-count">-</div></div>
  <div class="card"><h3>Total ETH sent</h3><div class="value" id="eth-sent">-</div></div>
</div>
{{end}}
<div class="grid">
  <div class="card">
    <h3>Top Cryptocurrencies</h3>
    <ul class="coins" id="coins"></ul>
  </div>
  <div class="card">
    <h3 id="chart-title">Price Chart</h3>
    <div id="chart-empty" class="muted" hidden></div>
    <div id="overlay" class="muted"></div>
    <canvas id="chart" height="120"></canvas>
  </div>
</div>
<div class="card" style="margin-bottom:1.5rem;">
  <h3>Market comparison (7 days)</h3>
  <canvas id="comparison" height="90"></canvas>
</div>
<div class="card" id="tx-card" hidden>
  <h3>Recent transactions</h3>
  <p id="tx-empty" class="muted" hidden></p>
  <table id="tx-table" hidden>
    <thead><tr><th>Hash</th><th>From</th><th>To</th><th>Value (ETH)</th><th>Time</th></tr></thead>
    <tbody id="tx-body"></tbody>
  </table>
</div>
<script>
(() => {
  const $ = (id) => document.getElementById(id);
  let chart = null, comparison = null, comparisonLoaded = false;

  const text = (el, v) => { el.textContent = v; };

  function renderCoins(coins) {
    const list = $('coins');
    list.replaceChildren();
    for (const c of coins) {
      const li = document.createElement('li');
      if (c.selected) li.classList.add('selected');
      const name = document.createElement('span');
      text(name, c.symbol + ' ' + c.name);
      name.style.color = c.color;
      const price = document.createElement('span');
      text(price, c.price + ' ');
      const change = document.createElement('span');
      change.className = c.positive ? 'up' : 'down';
      text(change, c.change_24h);
      price.appendChild(change);
      li.append(name, price);
      li.onclick = () => fetch('/dashboard/select', {
        method: 'POST',
        headers: {'Content-Type': 'application/x-www-form-urlencoded'},
        body: 'coin=' + encodeURIComponent(c.id),
      });
      list.appendChild(li);
    }
  }

  function renderChart(view) {
    const data = view.chart;
    text($('chart-title'), data ? data.label + ' Price Chart' : 'Price Chart');
    const empty = !data || data.points.length === 0;
    $('chart-empty').hidden = !empty || view.loading_coin;
    text($('chart-empty'), data && data.empty_message ? data.empty_message : '');
    const o = view.overlay;
    text($('overlay'), view.loading_coin ? 'Loading...' :
      o ? 'Last ' + o.last + ' (' + o.change + ')' + (o.ema ? ' · EMA ' + o.ema : '') + (o.rsi ? ' · RSI ' + o.rsi : '') : '');
    if (!data) return;
    const points = data.points.map(p => ({x: new Date(p.t).toLocaleString(), y: p.v}));
    if (chart) chart.destroy();
    chart = new Chart($('chart'), {
      type: 'line',
      data: {labels: points.map(p => p.x), datasets: [{label: data.label, data: points.map(p => p.y), borderColor: data.color, pointRadius: 0, fill: false}]},
      options: {animation: false, scales: {x: {display: false}}},
    });
  }

  function renderTransactions(table) {
    $('tx-card').hidden = !table;
    if (!table) return;
    const empty = table.rows.length === 0;
    $('tx-empty').hidden = !empty;
    $('tx-table').hidden = empty;
    text($('tx-empty'), table.empty_message || '');
    const body = $('tx-body');
    body.replaceChildren();
    for (const r of table.rows) {
      const tr = document.createElement('tr');
      for (const [v, title] of [[r.hash_short, r.hash], [r.from_short, r.from], [r.to_short, r.to], [r.value], [r.time]]) {
        const td = document.createElement('td');
        text(td, v);
        if (title) td.title = title;
        tr.appendChild(td);
      }
      body.appendChild(tr);
    }
  }

  async function loadComparison() {
    comparisonLoaded = true;
    const res = await fetch('/dashboard/comparison');
    if (!res.ok) return;
    const series = await res.json();
    if (series.length === 0) return;
    const labels = series[0].points.map(p => new Date(p.t).toLocaleDateString());
    if (comparison) comparison.destroy();
    comparison = new Chart($('comparison'), {
      type: 'line',
      data: {labels, datasets: series.map(s => ({label: s.label, data: s.points.map(p => p.v), borderColor: s.color, pointRadius: 0, fill: false}))},
      options: {animation: false, scales: {x: {display: false}}},
    });
  }

  function renderState(view) {
    $('loading').hidden = !view.loading;
    $('error').hidden = !view.error;
    text($('error'), view.error || '');
    if (view.summary) {
      text($('wallet'), view.summary.wallet);
      $('wallet').title = view.summary.wallet_full;
      text($('tx-count'), view.summary.transaction_count);
      text($('eth-sent'), view.summary.total_eth_sent);
    }
    renderCoins(view.coins || []);
    renderChart(view);
    renderTransactions(view.transactions);
    if (!view.loading && !comparisonLoaded && view.coins && view.coins.length > 0) loadComparison();
  }

  const source = new EventSource('/dashboard/stream');
  source.addEventListener('state', (e) => renderState(JSON.parse(e.data)));
  source.addEventListener('clock', (e) => text($('clock'), JSON.parse(e.data)));
})();
</script>`
