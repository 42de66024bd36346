package notify

const emailHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>kabuscraper run {{.RunID}}</title>
  <style>
    body {
      margin: 0;
      padding: 24px;
      background-color: #f3f4f6;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", "Hiragino Sans", sans-serif;
      color: #111827;
      line-height: 1.5;
    }

    .container {
      max-width: 640px;
      margin: 0 auto;
      background: #ffffff;
      border: 1px solid #e5e7eb;
      border-radius: 8px;
      overflow: hidden;
    }

    .header {
      padding: 20px 24px;
      background: #1f2937;
      color: #ffffff;
    }

    .headline {
      font-size: 22px;
      font-weight: 700;
    }

    .run-id {
      font-size: 12px;
      opacity: 0.7;
      font-family: monospace;
    }

    .section {
      padding: 16px 24px;
      border-top: 1px solid #f3f4f6;
    }

    .section-title {
      font-size: 11px;
      font-weight: 700;
      color: #6b7280;
      text-transform: uppercase;
      letter-spacing: 0.1em;
      margin-bottom: 12px;
    }

    table.stats {
      width: 100%;
      font-size: 14px;
      border-collapse: collapse;
    }

    table.stats td {
      padding: 6px 0;
    }

    table.stats td.label {
      color: #6b7280;
      width: 140px;
    }

    .kind {
      font-family: monospace;
      font-size: 13px;
    }

    .files {
      font-family: monospace;
      font-size: 12px;
      color: #374151;
    }

    .footer {
      padding: 16px 24px;
      font-size: 12px;
      color: #9ca3af;
      text-align: center;
      background: #f9fafb;
    }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <div class="headline">{{.Extracted}} of {{.Requested}} instruments extracted</div>
      <div class="run-id">{{.RunID}}</div>
    </div>

    <div class="section">
      <div class="section-title">Run</div>
      <table class="stats">
        <tr><td class="label">Started</td><td>{{.StartedAt.Format "02 Jan 2006 15:04"}}</td></tr>
        <tr><td class="label">Duration</td><td>{{duration .Duration}}</td></tr>
        <tr><td class="label">Skipped</td><td>{{.Skipped}}</td></tr>
        <tr><td class="label">History rows</td><td>{{.HistoryRows}}</td></tr>
      </table>
    </div>

    {{if .SkipKinds}}
    <div class="section">
      <div class="section-title">Skips by kind</div>
      <table class="stats">
        {{range .SkipKinds}}
        <tr><td class="label kind">{{.Kind}}</td><td>{{.Count}}</td></tr>
        {{end}}
      </table>
    </div>
    {{end}}

    <div class="section">
      <div class="section-title">Files</div>
      <div class="files">
        {{.ProfilePath}}<br />
        {{.HistoryPath}}<br />
        {{.LedgerPath}}
      </div>
    </div>

    <div class="footer">Generated by kabuscraper</div>
  </div>
</body>
</html>`
