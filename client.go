/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
)

// Simple HTML client for quick testing. Speech capture and playback
// belong to richer clients; this one is text in, streamed text out.
const indexHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>emcee</title>
<style>
  body { font-family: system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 2rem; max-width: 48rem; }
  h1 { margin-bottom: 0.5rem; }
  #status { margin-bottom: 1rem; font-size: 0.9rem; color: #666; }
  #chat { border: 1px solid #ddd; padding: 1rem; min-height: 16rem; margin-bottom: 1rem; white-space: pre-wrap; }
  .you { color: #036; margin: 0.5rem 0; }
  .host { color: #111; margin: 0.5rem 0; }
  #mods label { display: inline-block; margin: 0.15rem 0.75rem 0.15rem 0; font-size: 0.85rem; }
  #controls { display: flex; gap: 0.5rem; margin-bottom: 1rem; }
  #say { flex: 1; padding: 0.5rem; }
</style>
</head>
<body>
<h1>emcee</h1>
<div id="status">Say hi to your host. Introduce players by name; say "ready" when a player is set.</div>
<div id="chat"></div>
<div id="controls">
  <input id="say" type="text" placeholder="Talk to the host…" autocomplete="off">
  <button id="send">Send</button>
  <button id="stop">Stop</button>
</div>
<details><summary>Mods</summary><div id="mods"></div></details>

<script>
(function() {
  const chatEl = document.getElementById('chat');
  const sayEl = document.getElementById('say');
  const statusEl = document.getElementById('status');
  const modsEl = document.getElementById('mods');

  const messages = [
    { role: 'assistant', content: "Hey there! I'm your AI host for this awesome party game. Let's have some fun!" }
  ];
  let controller = null;
  let mods = [];

  appendLine('host', messages[0].content);

  fetch('/mods').then(function(r) { return r.json(); }).then(function(catalog) {
    mods = catalog;
    catalog.forEach(function(mod) {
      const label = document.createElement('label');
      const box = document.createElement('input');
      box.type = 'checkbox';
      box.checked = mod.enabled;
      box.addEventListener('change', function() {
        mod.enabled = box.checked;
        const enabled = mods.filter(function(m) { return m.enabled; }).map(function(m) { return m.id; });
        messages.push({ role: 'system', content: 'Mods updated. Enabled mods: ' + enabled.join(', ') });
      });
      label.appendChild(box);
      label.appendChild(document.createTextNode(' ' + mod.name));
      modsEl.appendChild(label);
    });
  });

  function appendLine(cls, text) {
    const div = document.createElement('div');
    div.className = cls;
    div.textContent = text;
    chatEl.appendChild(div);
    chatEl.scrollTop = chatEl.scrollHeight;
    return div;
  }

  async function send() {
    const text = sayEl.value.trim();
    if (!text) {
      return;
    }
    sayEl.value = '';

    if (controller) {
      controller.abort();
    }
    controller = new AbortController();

    messages.push({ role: 'user', content: text });
    appendLine('you', text);
    const hostLine = appendLine('host', '');
    statusEl.textContent = 'Thinking…';

    try {
      const resp = await fetch(location.pathname.replace(/\/$/, '') + '/chat', {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify({ messages: messages }),
        signal: controller.signal
      });
      if (!resp.ok) {
        statusEl.textContent = 'The host had trouble answering (' + resp.status + ').';
        return;
      }

      const reader = resp.body.getReader();
      const decoder = new TextDecoder();
      let reply = '';
      for (;;) {
        const { done, value } = await reader.read();
        if (done) {
          break;
        }
        reply += decoder.decode(value, { stream: true });
        hostLine.textContent = reply;
      }
      messages.push({ role: 'assistant', content: reply });
      statusEl.textContent = 'Your move.';
    } catch (e) {
      if (e.name === 'AbortError') {
        statusEl.textContent = 'Stopped.';
      } else {
        statusEl.textContent = 'Connection problem: ' + e;
      }
    }
  }

  document.getElementById('send').addEventListener('click', send);
  document.getElementById('stop').addEventListener('click', function() {
    if (controller) {
      controller.abort();
    }
  });
  sayEl.addEventListener('keydown', function(e) {
    if (e.key === 'Enter') {
      send();
    }
  });
})();
</script>
</body>
</html>
`

func getIndexHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write([]byte(indexHTML))
	}
}
