package server

import (
	"fmt"
	"net/http"
)

// handleIndex renders the interactive page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	cfg := s.board.Config()
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, indexPage, cfg.Surface.Width, cfg.Surface.Height, cfg.Graph.Nodes, cfg.Graph.MaxNodes)
}

const indexPage = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>dijkstraviz</title>
  <style>
    body {
      font-family: 'Helvetica Neue', Arial, sans-serif;
      margin: 0;
      padding: 20px;
      background: #f5f5f5;
      color: #333;
    }
    .container {
      max-width: 1320px;
      margin: 0 auto;
      background: white;
      padding: 20px;
      border-radius: 8px;
      box-shadow: 0 2px 10px rgba(0,0,0,0.1);
    }
    .btn {
      background: #4285f4;
      color: white;
      border: none;
      padding: 10px 20px;
      border-radius: 4px;
      cursor: pointer;
      font-size: 16px;
      margin-right: 8px;
    }
    .btn:hover {
      background: #3b78e7;
    }
    #scene {
      display: block;
      width: 100%%;
      user-select: none;
    }
    #status {
      font-family: monospace;
      margin-top: 10px;
    }
  </style>
</head>
<body>
  <div class="container">
    <img id="scene" src="/scene.svg" width="%[1]g" height="%[2]g" draggable="false">
    <div>
      <button class="btn" id="search">Find shortest path</button>
      <button class="btn" id="animate">Animate</button>
      <button class="btn" id="reset">Reset</button>
      <button class="btn" id="new">New graph</button>
      <input id="nodes" type="number" min="0" max="%[4]d" value="%[3]d">
    </div>
    <div id="status">Drag a node to pick the source, then another for the target.</div>
  </div>
  <script>
    const img = document.getElementById('scene');
    const status = document.getElementById('status');

    function post(path, params) {
      return fetch(path, {method: 'POST', body: new URLSearchParams(params)})
        .then(r => r.ok ? r.json() : r.text().then(t => { throw new Error(t); }))
        .then(show)
        .catch(err => { status.textContent = err.message; });
    }

    function show(st) {
      img.style.cursor = st.cursor || 'default';
      let text = 'state: ' + st.state;
      if (st.source !== null) text += ', source: ' + st.source;
      if (st.target !== null) text += ', target: ' + st.target;
      if (st.searching) text += ', searching';
      if (st.path) text += ', path: ' + st.path.join(' -> ') + ' (' + st.distance.toFixed(2) + ')';
      status.textContent = text;
    }

    function mouse(type) {
      return e => {
        const x = e.offsetX * img.naturalWidth / img.clientWidth;
        const y = e.offsetY * img.naturalHeight / img.clientHeight;
        post('/api/mouse', {type: type, x: x, y: y});
        e.preventDefault();
      };
    }

    img.addEventListener('mousedown', mouse('down'));
    img.addEventListener('mousemove', mouse('move'));
    img.addEventListener('mouseup', mouse('up'));

    document.getElementById('search').onclick = () => post('/api/search', {});
    document.getElementById('animate').onclick = () => post('/api/search', {animate: '1'});
    document.getElementById('reset').onclick = () => post('/api/reset', {});
    document.getElementById('new').onclick = () =>
      post('/api/new', {nodes: document.getElementById('nodes').value});

    setInterval(() => {
      const next = new Image();
      next.onload = () => { img.src = next.src; };
      next.src = '/scene.svg?t=' + Date.now();
    }, 50);
  </script>
</body>
</html>
`
