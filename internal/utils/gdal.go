package utils

import "sync"

var gdalMu sync.Mutex

// WithGDALLock serializes access to GDAL datasets. godal handles are not safe
// for concurrent use, so workers reading rasters wrap the read in this.
func WithGDALLock(fn func()) {
	gdalMu.Lock()
	defer gdalMu.Unlock()
	fn()
}
