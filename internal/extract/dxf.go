package extract

import (
	"bufio"
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// parseDXF reads an ASCII CAD drawing exchange file and renders a text
// report instead of raw geometry: the drawing name, format version, layer
// names, the literal content of TEXT/MTEXT entities, block references, and
// entity-type counts. DXF is a flat stream of group-code/value pairs, so
// the scan is a small state machine over those pairs.
func parseDXF(data []byte, filename string) (string, error) {
	pairs, err := dxfPairs(data)
	if err != nil {
		return "", err
	}

	var (
		section       string
		awaitSection  bool
		headerVar     string
		version       string
		tableRecord   string
		awaitLayer    bool
		layers        []string
		seenLayers    = map[string]bool{}
		entityType    string
		textValue     string
		mtextParts    []string
		insertBlock   string
		entityLines   []string
		entityCounts  = map[string]int{}
		sectionsFound int
	)

	flushEntity := func() {
		switch entityType {
		case "":
			return
		case "TEXT":
			entityLines = append(entityLines, "TEXT: "+textValue)
		case "MTEXT":
			entityLines = append(entityLines, "MTEXT: "+strings.Join(mtextParts, "")+textValue)
		case "INSERT":
			entityLines = append(entityLines, "INSERT: "+insertBlock)
		}
		entityType = ""
		textValue = ""
		mtextParts = nil
		insertBlock = ""
	}

	for _, p := range pairs {
		if p.code == 0 {
			switch p.value {
			case "SECTION":
				awaitSection = true
				sectionsFound++
				continue
			case "ENDSEC":
				if section == "ENTITIES" {
					flushEntity()
				}
				section = ""
				continue
			case "EOF":
				continue
			}
		}

		if awaitSection {
			if p.code == 2 {
				section = strings.ToUpper(p.value)
				awaitSection = false
			}
			continue
		}

		switch section {
		case "HEADER":
			if p.code == 9 {
				headerVar = p.value
			} else if p.code == 1 && headerVar == "$ACADVER" {
				version = p.value
			}
		case "TABLES":
			if p.code == 0 {
				tableRecord = p.value
				awaitLayer = tableRecord == "LAYER"
				continue
			}
			if awaitLayer && p.code == 2 {
				if !seenLayers[p.value] {
					seenLayers[p.value] = true
					layers = append(layers, p.value)
				}
				awaitLayer = false
			}
		case "ENTITIES":
			if p.code == 0 {
				flushEntity()
				entityType = p.value
				entityCounts[entityType]++
				continue
			}
			switch entityType {
			case "TEXT":
				if p.code == 1 {
					textValue = p.value
				}
			case "MTEXT":
				if p.code == 3 {
					mtextParts = append(mtextParts, p.value)
				} else if p.code == 1 {
					textValue = p.value
				}
			case "INSERT":
				if p.code == 2 {
					insertBlock = p.value
				}
			}
		}
	}
	flushEntity()

	if sectionsFound == 0 {
		return "", fmt.Errorf("%w: dxf: no sections found", ErrParseFailure)
	}

	if version == "" {
		version = "unknown"
	}

	var report strings.Builder
	fmt.Fprintf(&report, "Drawing: %s\n", filepath.Base(filename))
	fmt.Fprintf(&report, "Version: %s\n", version)
	fmt.Fprintf(&report, "Layers: %s\n", strings.Join(layers, ", "))
	for _, line := range entityLines {
		report.WriteString(line)
		report.WriteString("\n")
	}
	report.WriteString("Entities: ")
	report.WriteString(formatEntityCounts(entityCounts))
	return report.String(), nil
}

type dxfPair struct {
	code  int
	value string
}

func dxfPairs(data []byte) ([]dxfPair, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		pairs   []dxfPair
		code    int
		haveOne bool
	)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if !haveOne {
			parsed, err := strconv.Atoi(strings.TrimSpace(line))
			if err != nil {
				return nil, fmt.Errorf("%w: dxf: bad group code %q", ErrParseFailure, strings.TrimSpace(line))
			}
			code = parsed
			haveOne = true
			continue
		}
		// Group codes are commonly right-aligned; values keep their spacing.
		pairs = append(pairs, dxfPair{code: code, value: line})
		haveOne = false
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: dxf: %v", ErrParseFailure, err)
	}
	if haveOne {
		return nil, fmt.Errorf("%w: dxf: dangling group code %d", ErrParseFailure, code)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: dxf: empty file", ErrParseFailure)
	}
	return pairs, nil
}

func formatEntityCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)
	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, fmt.Sprintf("%s=%d", t, counts[t]))
	}
	return strings.Join(parts, ", ")
}
