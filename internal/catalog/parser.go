package catalog

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alexivanou/placefinder/internal/model"
)

// Column layout of a catalog TSV file:
// id, name, formatted address, lat, lng, types (comma separated), provider place id
const minColumns = 5

// LoadFile parses a catalog from a TSV file or from the first .tsv/.txt entry of a zip archive
func LoadFile(path string) (*Catalog, error) {
	if strings.HasSuffix(strings.ToLower(path), ".zip") {
		return loadFromZip(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer file.Close()

	places, err := Parse(file)
	if err != nil {
		return nil, err
	}
	return New(places), nil
}

func loadFromZip(zipPath string) (*Catalog, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if strings.HasSuffix(f.Name, ".tsv") || strings.HasSuffix(f.Name, ".txt") {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open file in zip: %w", err)
			}
			defer rc.Close()

			places, err := Parse(rc)
			if err != nil {
				return nil, err
			}
			return New(places), nil
		}
	}

	return nil, fmt.Errorf("no catalog file found in zip")
}

// Parse reads catalog rows. Comment lines, short rows and rows with unparsable
// coordinates are skipped.
func Parse(reader io.Reader) ([]model.Place, error) {
	scanner := bufio.NewScanner(reader)
	var places []model.Place

	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < minColumns {
			continue
		}

		id := strings.TrimSpace(parts[0])
		name := strings.TrimSpace(parts[1])
		if id == "" || name == "" {
			continue
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || lat < -90 || lat > 90 {
			continue
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(parts[4]), 64)
		if err != nil || lng < -180 || lng > 180 {
			continue
		}

		place := model.Place{
			ID:               id,
			Name:             name,
			FormattedAddress: strings.TrimSpace(parts[2]),
			Location:         model.Location{Lat: lat, Lng: lng},
		}
		if len(parts) > 5 {
			place.Types = splitTypes(parts[5])
		}
		if len(parts) > 6 {
			place.PlaceID = strings.TrimSpace(parts[6])
		}

		places = append(places, place)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan catalog: %w", err)
	}

	return places, nil
}

func splitTypes(value string) []string {
	var types []string
	for _, t := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			types = append(types, trimmed)
		}
	}
	return types
}
