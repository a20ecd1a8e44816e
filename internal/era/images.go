package era

// Image is a curated illustration for an era.
type Image struct {
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description" yaml:"description"`
}

var builtin = map[Era]Image{
	Ancient: {
		URL:         "https://images.unsplash.com/photo-1555993539-1732b0258235?w=800",
		Description: "Ruins of classical columns at dusk",
	},
	Medieval: {
		URL:         "https://images.unsplash.com/photo-1533154683836-84ea7a0bc310?w=800",
		Description: "A stone castle on a hill above a medieval town",
	},
	Renaissance: {
		URL:         "https://images.unsplash.com/photo-1541367777708-7905fe3296c0?w=800",
		Description: "Renaissance frescoes beneath a painted dome",
	},
	Industrial: {
		URL:         "https://images.unsplash.com/photo-1513828583688-c52646db42da?w=800",
		Description: "Smokestacks and iron machinery of an industrial works",
	},
	Modern: {
		URL:         "https://images.unsplash.com/photo-1495020689067-958852a7765e?w=800",
		Description: "A mid-century city street with broadcast antennas",
	},
	Contemporary: {
		URL:         "https://images.unsplash.com/photo-1518770660439-4636190af475?w=800",
		Description: "Close-up of a circuit board and digital components",
	},
	Futuristic: {
		URL:         "https://images.unsplash.com/photo-1451187580459-43490279c0fa?w=800",
		Description: "Earth from orbit with glowing network lines",
	},
	Default: {
		URL:         "https://images.unsplash.com/photo-1461360370896-922624d12aa1?w=800",
		Description: "An antique map and compass on a wooden desk",
	},
}

// Resolver maps event text and year to an image. The zero value is not
// usable; construct with NewResolver.
type Resolver struct {
	table map[Era]Image
}

// NewResolver returns a resolver over the built-in table with any non-blank
// overrides applied. Overrides for unknown eras are ignored.
func NewResolver(overrides map[Era]Image) *Resolver {
	table := make(map[Era]Image, len(builtin))
	for k, v := range builtin {
		table[k] = v
	}
	for k, v := range overrides {
		if _, ok := builtin[k]; !ok {
			continue
		}
		if v.URL == "" || v.Description == "" {
			continue
		}
		table[k] = v
	}
	return &Resolver{table: table}
}

// Resolve always returns a non-empty image.
func (r *Resolver) Resolve(text string, year int) Image {
	return r.Lookup(Classify(text, year))
}

// Lookup returns the image for e, or the default entry for unknown keys.
func (r *Resolver) Lookup(e Era) Image {
	if img, ok := r.table[e]; ok {
		return img
	}
	return r.table[Default]
}
