package browser

// fingerprintScript harvests the attributes the healing scorer compares:
// stable identifiers first (id, name, test hooks), then the descriptive
// ones (aria-label, role, placeholder, class, title).
const fingerprintScript = `el => {
	const attrs = {};
	const wanted = [
		'id', 'name', 'type',
		'data-test-id', 'data-testid', 'data-test', 'data-qa', 'data-cy',
		'aria-label', 'role', 'placeholder', 'title', 'href', 'value'
	];

	for (const attr of wanted) {
		const val = el.getAttribute(attr);
		if (val !== null && val.length < 120) {
			attrs[attr] = val;
		}
	}

	if (el.className && typeof el.className === 'string') {
		const classes = el.className.split(' ')
			.filter(c => c && !c.match(/^[0-9]/) && c.length < 40 && !c.match(/^[a-f0-9]{8,}$/))
			.slice(0, 3);
		if (classes.length > 0) {
			attrs['class'] = classes.join(' ');
		}
	}

	let text = '';
	if (el.textContent) {
		text = el.textContent.trim().substring(0, 80);
	}

	return {
		tag: el.tagName.toLowerCase(),
		text: text,
		attributes: attrs
	};
}`
