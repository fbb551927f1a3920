package sensor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultW1Root is where the Linux w1 bus exposes its slaves.
const DefaultW1Root = "/sys/bus/w1/devices"

// W1Thermometer reads a DS18B20 through the kernel w1_therm driver.
type W1Thermometer struct {
	path string // .../<id>/w1_slave
}

// NewW1Thermometer opens the sensor with the given id (e.g. "28-0316a2794aff")
// under root. An empty id picks the first DS18B20 (family 28) found.
func NewW1Thermometer(root, id string) (*W1Thermometer, error) {
	if root == "" {
		root = DefaultW1Root
	}
	if id == "" {
		matches, err := filepath.Glob(filepath.Join(root, "28-*"))
		if err != nil {
			return nil, fmt.Errorf("scan w1 bus: %w", err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no DS18B20 found under %s", root)
		}
		id = filepath.Base(matches[0])
	}

	path := filepath.Join(root, id, "w1_slave")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open w1 sensor %s: %w", id, err)
	}
	return &W1Thermometer{path: path}, nil
}

// ReadTemperature triggers a conversion and returns °C.
func (w *W1Thermometer) ReadTemperature() (float32, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return 0, fmt.Errorf("read w1 sensor: %w", err)
	}
	return parseW1Slave(string(data))
}

// parseW1Slave parses the two-line w1_therm output:
//
//	72 01 4b 46 7f ff 0e 10 57 : crc=57 YES
//	72 01 4b 46 7f ff 0e 10 57 t=23125
func parseW1Slave(s string) (float32, error) {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) < 2 {
		return 0, fmt.Errorf("w1 output: expected 2 lines, got %d", len(lines))
	}
	if !strings.HasSuffix(strings.TrimSpace(lines[0]), "YES") {
		return 0, fmt.Errorf("w1 output: crc check failed")
	}

	i := strings.LastIndex(lines[1], "t=")
	if i < 0 {
		return 0, fmt.Errorf("w1 output: missing t= field")
	}
	milli, err := strconv.Atoi(strings.TrimSpace(lines[1][i+2:]))
	if err != nil {
		return 0, fmt.Errorf("w1 output: bad temperature: %w", err)
	}
	return float32(milli) / 1000, nil
}
