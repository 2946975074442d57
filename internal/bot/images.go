package bot

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	vitrinaImage = "vitrina.jpg"
	defaultImage = "product_default.jpg"
	productDir   = "imageproduct"
)

// menuImage is the storefront photo used for the catalog message.
func (b *Bot) menuImage() string {
	return filepath.Join(b.assetsDir, vitrinaImage)
}

// productImage resolves the sheet's image value to something SendPhoto
// accepts: remote URLs pass through, file names map to the assets
// directory with a placeholder fallback.
func (b *Bot) productImage(image string) string {
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image
	}
	if image != "" {
		p := filepath.Join(b.assetsDir, productDir, image)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(b.assetsDir, defaultImage)
}
