package resolve

// instrumentationScript is injected into every resolved document. It does
// two jobs inside the sandbox:
//
//  1. Link interception. There is no routing server behind the preview, so
//     "pages" are just other entries in the flat file set. Clicks walk up
//     to the nearest anchor; empty, "#" and javascript: hrefs are
//     suppressed; same-origin hrefs become a structured navigate message
//     to the parent; cross-origin hrefs open in a new tab so the sandbox
//     is never navigated away.
//
//  2. One-shot element selection. The parent arms selection mode with a
//     {type:'selection', enabled:true} message; the next click is captured,
//     a CSS selector uniquely addressing the element plus its outerHTML is
//     posted back, and the mode disarms itself.
const instrumentationScript = `(function () {
  var selectionArmed = false;

  window.addEventListener('message', function (e) {
    var msg = e.data;
    if (msg && msg.type === 'selection') {
      selectionArmed = !!msg.enabled;
      document.body.style.cursor = selectionArmed ? 'crosshair' : '';
    }
  });

  function cssPath(el) {
    if (el.id) return '#' + el.id;
    var parts = [];
    while (el && el.nodeType === 1 && el.tagName !== 'HTML') {
      var part = el.tagName.toLowerCase();
      if (el.id) {
        parts.unshift(part + '#' + el.id);
        return parts.join(' > ');
      }
      var index = 1;
      var sib = el;
      while ((sib = sib.previousElementSibling)) {
        if (sib.tagName === el.tagName) index++;
      }
      parts.unshift(part + ':nth-of-type(' + index + ')');
      el = el.parentElement;
    }
    return parts.join(' > ');
  }

  document.addEventListener('click', function (e) {
    if (selectionArmed) {
      e.preventDefault();
      e.stopPropagation();
      selectionArmed = false;
      document.body.style.cursor = '';
      parent.postMessage({
        type: 'elementSelected',
        payload: { selector: cssPath(e.target), html: e.target.outerHTML }
      }, '*');
      return;
    }

    var anchor = e.target.closest ? e.target.closest('a') : null;
    if (!anchor) return;

    var href = anchor.getAttribute('href');
    if (!href || href === '#' || href.charAt(0) === '#' || href.indexOf('javascript:') === 0) {
      e.preventDefault();
      return;
    }

    var url;
    try {
      url = new URL(href, window.location.href);
    } catch (err) {
      e.preventDefault();
      return;
    }

    if (url.origin === window.location.origin) {
      e.preventDefault();
      parent.postMessage({ type: 'navigate', path: href }, '*');
    } else {
      e.preventDefault();
      window.open(url.href, '_blank');
    }
  }, true);
})();`
