package render

// TileLayer is the raster basemap under the data layers.
type TileLayer struct {
	URL         string `json:"url" mapstructure:"tile_url"`
	Attribution string `json:"attribution" mapstructure:"attribution"`
	MaxZoom     int    `json:"max_zoom" mapstructure:"max_zoom"`
}

// DefaultTileLayer is the OpenStreetMap standard layer.
var DefaultTileLayer = TileLayer{
	URL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
	Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
	MaxZoom:     19,
}

// OrDefault fills empty fields from DefaultTileLayer.
func (t TileLayer) OrDefault() TileLayer {
	if t.URL == "" {
		t.URL = DefaultTileLayer.URL
		if t.Attribution == "" {
			t.Attribution = DefaultTileLayer.Attribution
		}
	}
	if t.MaxZoom <= 0 {
		t.MaxZoom = DefaultTileLayer.MaxZoom
	}
	return t
}
