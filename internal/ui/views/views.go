// Package views renders the portal's HTML pages and SSE fragments.
package views

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/townworks/townledger/internal/ledger"
)

func esc(s string) string {
	return html.EscapeString(s)
}

func writeLayout(w io.Writer, title, body string) error {
	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s | Town Ledger</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<style>
body{font-family:system-ui,sans-serif;margin:0;background:#f5f5f4;color:#1c1917}
header{background:#1c4532;color:#fff;padding:0.75rem 1.5rem;display:flex;justify-content:space-between;align-items:center}
header a{color:#c6f6d5;text-decoration:none;margin-left:1rem}
main{max-width:960px;margin:2rem auto;padding:0 1rem}
.cards{display:grid;grid-template-columns:repeat(auto-fit,minmax(160px,1fr));gap:1rem}
.card{background:#fff;border-radius:8px;padding:1rem;box-shadow:0 1px 3px rgba(0,0,0,.12)}
.card h3{margin:0;font-size:.8rem;text-transform:uppercase;color:#57534e}
.card p{margin:.25rem 0 0;font-size:1.6rem;font-weight:600}
table{width:100%%;border-collapse:collapse;background:#fff;margin-top:1rem}
th,td{padding:.5rem .75rem;border-bottom:1px solid #e7e5e4;text-align:left}
form.login{max-width:320px;margin:4rem auto;background:#fff;padding:2rem;border-radius:8px}
form.login input{width:100%%;padding:.5rem;margin:.25rem 0 1rem;box-sizing:border-box}
form.login button{width:100%%;padding:.6rem;background:#1c4532;color:#fff;border:0;border-radius:4px}
.error{color:#b91c1c}
</style>
</head>
<body>
%s
</body>
</html>`, esc(title), body)
	return err
}

// LoginPage renders the login form, with an optional error line.
func LoginPage(errMsg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		body := `<main><form class="login" method="post" action="/login">
<h2>Town Ledger</h2>`
		if errMsg != "" {
			body += `<p class="error">` + esc(errMsg) + `</p>`
		}
		body += `<label>Username<input name="username" autocomplete="username" required></label>
<label>Password<input name="password" type="password" autocomplete="current-password" required></label>
<button type="submit">Sign in</button>
</form></main>`
		return writeLayout(w, "Sign in", body)
	})
}

// DashboardPage renders the portal shell with the overview stats and a
// live-update subscription.
func DashboardPage(username, role string, ov *ledger.Overview) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		body := fmt.Sprintf(`<header>
<strong>Town Ledger</strong>
<nav>
<span>%s (%s)</span>
<a href="/api/records/residents">Residents</a>
<a href="/api/records/bills">Bills</a>
<a href="/api/records/funds">Funds</a>
<form method="post" action="/logout" style="display:inline"><button type="submit">Sign out</button></form>
</nav>
</header>
<main data-on-load="@get('/updates')">
%s
</main>`, esc(username), esc(role), statsGrid(ov))
		return writeLayout(w, "Dashboard", body)
	})
}

// StatsFragment renders the overview stats for SSE patching.
func StatsFragment(ov *ledger.Overview) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, statsGrid(ov))
		return err
	})
}

func statsGrid(ov *ledger.Overview) string {
	out := fmt.Sprintf(`<div id="stats">
<div class="cards">
<div class="card"><h3>Houses</h3><p>%d</p></div>
<div class="card"><h3>Streets</h3><p>%d</p></div>
<div class="card"><h3>Families</h3><p>%d</p></div>
<div class="card"><h3>Rented</h3><p>%d</p></div>
</div>`, ov.Houses, ov.Streets, ov.Families, ov.Rented)

	if len(ov.Billing) > 0 {
		out += `<table><thead><tr><th>Month</th><th>Billed</th><th>Collected (Rs)</th><th>Settled</th></tr></thead><tbody>`
		for _, m := range ov.Billing {
			out += fmt.Sprintf(`<tr><td>%s</td><td>%d</td><td>%d</td><td>%d</td></tr>`,
				esc(m.Month), m.Billed, m.Collected, m.Settled)
		}
		out += `</tbody></table>`
	}
	if len(ov.Funds) > 0 {
		out += `<table><thead><tr><th>Fund</th><th>Month</th><th>Raised (Rs)</th><th>Contributors</th></tr></thead><tbody>`
		for _, f := range ov.Funds {
			out += fmt.Sprintf(`<tr><td>%s</td><td>%s</td><td>%d</td><td>%d</td></tr>`,
				esc(f.Title), esc(f.Month), f.TotalAmount, f.Contributors)
		}
		out += `</tbody></table>`
	}
	out += `</div>`
	return out
}
