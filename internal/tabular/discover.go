package tabular

import (
	"fmt"
	"path/filepath"
	"strconv"
)

// DiscoverYearFiles enumerates each year's posting files under
// root/<year>/<subdir>/*.<ext>. Every year in the inclusive range must have
// at least one file; an empty year is a configuration error caught before
// any stage runs, not a silent zero in the output.
func DiscoverYearFiles(root, subdir, ext string, yearFrom, yearTo int) (map[int][]string, error) {
	files := make(map[int][]string, yearTo-yearFrom+1)
	for year := yearFrom; year <= yearTo; year++ {
		dir := filepath.Join(root, strconv.Itoa(year), subdir)
		pattern := filepath.Join(dir, "*."+ext)
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad file pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no .%s files for year %d under %s", ext, year, dir)
		}
		files[year] = matches
	}
	return files, nil
}
