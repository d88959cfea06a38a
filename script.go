package pagecut

import (
	"encoding/json"
	"fmt"
)

// Attributes stamped on elements by AnnotateScript. They carry the
// browser-computed colour and weight, which static parsing cannot resolve.
const (
	ComputedColorAttr  = "data-pagecut-color"
	ComputedWeightAttr = "data-pagecut-weight"
)

// NeutralizeScript is an in-page function (keywords, zThreshold) => clicks.
// It clicks the first visible clickable element matching each gate keyword,
// then removes screen-covering fixed or absolute body children stacked above
// zThreshold, then unlocks scrolling on html and body. Clicks come first
// because some gates only set their cookie when acknowledged.
const NeutralizeScript = `(keywords, zThreshold) => {
	const controls = 'a, button, input[type=button], input[type=submit], [role=button], [onclick]';
	const generic = 'label, div, span, p';
	const visible = (el) => {
		const r = el.getBoundingClientRect();
		const cs = window.getComputedStyle(el);
		return r.width > 0 && r.height > 0 && cs.visibility !== 'hidden' && cs.display !== 'none';
	};
	const label = (el) => ((el.innerText || el.value || '') + '').trim();
	// Keywords of two characters or fewer only match a whole label.
	const matches = (el, kw) => {
		const t = label(el);
		const loose = [...kw].length > 2 && t.length <= kw.length + 10 && t.includes(kw);
		return t !== '' && (t === kw || loose) && visible(el);
	};
	// Real controls first; among generic elements the innermost match wins.
	const find = (kw) => {
		const hit = Array.from(document.querySelectorAll(controls)).find((el) => matches(el, kw));
		if (hit) return hit;
		const loose = Array.from(document.querySelectorAll(generic)).filter((el) => matches(el, kw));
		return loose.find((el) => !loose.some((other) => other !== el && el.contains(other)));
	};
	let clicks = 0;
	for (const kw of keywords || []) {
		const hit = find(kw);
		if (hit) {
			try { hit.click(); clicks++; } catch (e) {}
		}
	}
	const layers = Array.from(document.querySelectorAll('body > *, body > section > *'));
	for (const el of layers) {
		const cs = window.getComputedStyle(el);
		const z = parseInt(cs.zIndex, 10);
		if ((cs.position === 'fixed' || cs.position === 'absolute') && !isNaN(z) && z > zThreshold) {
			el.remove();
		}
	}
	for (const el of [document.documentElement, document.body]) {
		if (!el) continue;
		el.style.setProperty('overflow', 'visible', 'important');
		el.style.setProperty('height', 'auto', 'important');
	}
	return clicks;
}`

// AnnotateScript is an in-page function () => count. It stamps
// ComputedColorAttr and ComputedWeightAttr on body elements whose computed
// colour or weight differs from their parent's, so the closest annotated
// ancestor of any text carries its effective style.
const AnnotateScript = `() => {
	let count = 0;
	const walk = (el, parentColor, parentWeight) => {
		const cs = window.getComputedStyle(el);
		const color = cs.color;
		const weight = cs.fontWeight;
		if (color !== parentColor) {
			el.setAttribute('` + ComputedColorAttr + `', color);
			count++;
		}
		if (weight !== parentWeight) {
			el.setAttribute('` + ComputedWeightAttr + `', weight);
			count++;
		}
		for (const child of el.children) {
			walk(child, color, weight);
		}
	};
	if (document.body) {
		const cs = window.getComputedStyle(document.body);
		for (const child of document.body.children) {
			walk(child, cs.color, cs.fontWeight);
		}
	}
	return count;
}`

// Invoke renders an immediately-invoked call of a script function with the
// given arguments encoded as JSON, for drivers that evaluate expressions
// rather than functions.
func Invoke(fn string, args ...any) (string, error) {
	encoded := make([]byte, 0, 64)
	for i, arg := range args {
		b, err := json.Marshal(arg)
		if err != nil {
			return "", fmt.Errorf("encoding script argument %d: %w", i, err)
		}
		if i > 0 {
			encoded = append(encoded, ',')
		}
		encoded = append(encoded, b...)
	}
	return fmt.Sprintf("(%s)(%s)", fn, encoded), nil
}
