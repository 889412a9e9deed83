/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package widgethandlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/common"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/config"
)

// WidgetScript serves the self-bootstrapping embed script. The script reads
// its configuration from its own <script> tag and talks back to the public
// API of this server.
func (h *Handler) WidgetScript(c *gin.Context) {
	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", config.GetWidgetAssetMaxAgeSecond()))
	c.Data(http.StatusOK, common.JsContentType, []byte(widgetScript))
}

const widgetScript = `(function () {
  'use strict';

  var script = document.currentScript;
  if (!script) { return; }
  var workspace = script.getAttribute('data-workspace');
  var board = script.getAttribute('data-board') || 'main';
  var apiBase = script.getAttribute('data-api-base') || script.src.replace(/\/widget\.js.*$/, '');
  if (!workspace) { return; }

  var base = apiBase + '/api/v1/' + encodeURIComponent(workspace) + '/' + encodeURIComponent(board);

  function anonId() {
    var key = 'clearvoice_anon_id';
    var id = null;
    try { id = window.localStorage.getItem(key); } catch (e) { /* private mode */ }
    if (!id) {
      id = 'anon_' + Math.random().toString(36).slice(2, 12);
      try { window.localStorage.setItem(key, id); } catch (e) { /* private mode */ }
    }
    return id;
  }

  function request(method, path, body) {
    return fetch(base + path, {
      method: method,
      headers: { 'Content-Type': 'application/json' },
      body: body ? JSON.stringify(body) : undefined
    }).then(function (rsp) {
      if (!rsp.ok) { throw new Error('clearvoice: request failed (' + rsp.status + ')'); }
      return rsp.json();
    });
  }

  function el(tag, cls, text) {
    var node = document.createElement(tag);
    if (cls) { node.className = cls; }
    if (text) { node.textContent = text; }
    return node;
  }

  function render(root) {
    root.innerHTML = '';
    var form = el('form', 'cv-form');
    var title = el('input', 'cv-title');
    title.placeholder = 'Share your feedback...';
    title.maxLength = 160;
    var submit = el('button', 'cv-submit', 'Send');
    submit.type = 'submit';
    form.appendChild(title);
    form.appendChild(submit);
    root.appendChild(form);

    var list = el('ul', 'cv-list');
    root.appendChild(list);

    function refresh() {
      request('GET', '/feedback').then(function (data) {
        list.innerHTML = '';
        (data.items || []).forEach(function (item) {
          var row = el('li', 'cv-item');
          var vote = el('button', 'cv-vote', '▲ ' + (item.vote_count || 0));
          vote.type = 'button';
          vote.addEventListener('click', function () {
            request('POST', '/feedback/' + item.id + '/votes', { externalUserId: anonId() })
              .then(refresh)
              .catch(function () {});
          });
          row.appendChild(vote);
          row.appendChild(el('span', 'cv-item-title', item.title));
          list.appendChild(row);
        });
      }).catch(function () {});
    }

    form.addEventListener('submit', function (event) {
      event.preventDefault();
      var value = title.value.trim();
      if (!value) { return; }
      request('POST', '/feedback', { title: value, externalUserId: anonId() })
        .then(function () { title.value = ''; refresh(); })
        .catch(function () {});
    });

    refresh();
  }

  var root = document.getElementById('clearvoice-widget');
  if (!root) {
    root = el('div', 'clearvoice-widget');
    root.id = 'clearvoice-widget';
    script.parentNode.insertBefore(root, script);
  }
  render(root);
})();
`
