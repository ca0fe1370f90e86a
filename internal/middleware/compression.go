package middleware

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// uncompressedPaths are served as is. Prometheus negotiates its own encoding.
var uncompressedPaths = []string{"/metrics", "/swagger/"}

// Compression gzips cart and admin responses at the default level.
func Compression() gin.HandlerFunc {
	return CompressionLevel(gzip.DefaultCompression)
}

// CompressionLevel gzips responses at level. Out-of-range levels use the default.
func CompressionLevel(level int) gin.HandlerFunc {
	if level != gzip.DefaultCompression && (level < gzip.BestSpeed || level > gzip.BestCompression) {
		level = gzip.DefaultCompression
	}
	return gzip.Gzip(level,
		gzip.WithExcludedPaths(uncompressedPaths),
		gzip.WithExcludedExtensions([]string{".png", ".gz", ".zip"}),
	)
}
