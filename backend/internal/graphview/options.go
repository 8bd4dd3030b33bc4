package graphview

// NetworkOptions is the layout component configuration served to clients.
// Groups are keyed by NodeGroup values.
func NetworkOptions() map[string]any {
	return map[string]any{
		"nodes": map[string]any{
			"shape":  "box",
			"font":   map[string]any{"size": 16},
			"shadow": true,
		},
		"edges": map[string]any{
			"font":   map[string]any{"size": 12, "align": "middle"},
			"color":  map[string]any{"color": "#848484", "highlight": "#848484"},
			"width":  2,
			"arrows": map[string]any{"to": map[string]any{"enabled": true, "scaleFactor": 0.5}},
		},
		"physics": map[string]any{
			"enabled": true,
			"barnesHut": map[string]any{
				"gravitationalConstant": -2000,
				"centralGravity":        0.3,
				"springLength":          200,
				"springConstant":        0.04,
			},
			"stabilization": map[string]any{
				"enabled":          true,
				"iterations":       1000,
				"updateInterval":   50,
				"onlyDynamicEdges": false,
				"fit":              true,
			},
		},
		"layout": map[string]any{"improvedLayout": true},
		"groups": map[string]any{
			"application": map[string]any{
				"color": map[string]any{"background": "#74b9ff", "border": "#0984e3"},
				"shape": "box",
			},
			"business_flow": map[string]any{
				"color": map[string]any{"background": "#55efc4", "border": "#00b894"},
				"shape": "diamond",
			},
			"technical_flow": map[string]any{
				"color": map[string]any{"background": "#ffeaa7", "border": "#fdcb6e"},
				"shape": "triangle",
			},
		},
	}
}

// ExpansionStabilization is applied after an expansion adds elements, so the
// new nodes settle without refitting the viewport.
func ExpansionStabilization() map[string]any {
	return map[string]any{
		"enabled":          true,
		"iterations":       50,
		"updateInterval":   25,
		"onlyDynamicEdges": false,
		"fit":              false,
	}
}
