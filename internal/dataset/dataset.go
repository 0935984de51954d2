// Package dataset discovers contrast-map files on disk, parses their naming
// entities, and applies an exclusions list.
package dataset

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// File is one validated contrast-map record.
type File struct {
	Path     string
	Subject  string
	Session  string
	Run      string
	Contrast string
}

var (
	subRe      = regexp.MustCompile(`(sub-[^_/.]+)`)
	sesRe      = regexp.MustCompile(`(ses-[^_/.]+)`)
	taskRe     = regexp.MustCompile(`(task-[^_/.]+)`)
	runRe      = regexp.MustCompile(`_run-([^_.]+)`)
	contrastRe = regexp.MustCompile(`contrast-(.+?)(?:_run-|_rtmodel-|_stat-|_space-|\.nii)`)
)

// ParseEntities extracts subject, session, run and contrast from a BIDS-style
// file name. The task and contrast entities are matched independently and
// joined, so other entities may sit between them:
// sub-s01_ses-01_task-nBack_run-1_contrast-twoBack-oneBack_rtmodel-rt_centered_stat-effect-size.nii.gz
// yields contrast task-nBack_contrast-twoBack-oneBack. Run is optional and
// numeric run indices are zero-padded to two digits; the other entities are
// required.
func ParseEntities(path string) (File, error) {
	name := filepath.Base(path)

	sub := subRe.FindString(name)
	ses := sesRe.FindString(name)
	task := taskRe.FindString(name)
	contrast := contrastRe.FindStringSubmatch(name)
	if sub == "" || ses == "" || task == "" || contrast == nil {
		return File{}, fmt.Errorf("file name %s is missing required entities", name)
	}

	f := File{
		Path:     path,
		Subject:  sub,
		Session:  ses,
		Contrast: task + "_contrast-" + contrast[1],
	}
	if run := runRe.FindStringSubmatch(name); run != nil {
		f.Run = normalizeRun(run[1])
	}
	return f, nil
}

// normalizeRun zero-pads numeric run indices so run-1 and run-01 name the
// same run.
func normalizeRun(value string) string {
	if n, err := strconv.Atoi(value); err == nil {
		return fmt.Sprintf("run-%02d", n)
	}
	return "run-" + value
}

// Exclusion filters out matching files. Empty fields are wildcards.
type Exclusion struct {
	Subject  string `json:"subject"`
	Session  string `json:"session"`
	Contrast string `json:"contrast"`
}

// Exclusions is the parsed exclusions list.
type Exclusions struct {
	Exclusions []Exclusion `json:"exclusions"`
}

// LoadExclusions reads an exclusions JSON file. An empty path yields an empty
// list.
func LoadExclusions(path string) (*Exclusions, error) {
	if path == "" {
		return &Exclusions{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read exclusions: %w", err)
	}

	var excl Exclusions
	if err := json.Unmarshal(data, &excl); err != nil {
		return nil, fmt.Errorf("parse exclusions: %w", err)
	}
	return &excl, nil
}

// Excluded reports whether f matches any exclusion record.
func (e *Exclusions) Excluded(f File) bool {
	for _, x := range e.Exclusions {
		if x.Subject != "" && x.Subject != f.Subject {
			continue
		}
		if x.Session != "" && x.Session != f.Session {
			continue
		}
		if x.Contrast != "" && x.Contrast != f.Contrast {
			continue
		}
		return true
	}
	return false
}

// Discover walks inputDir for contrast-map volumes of the given subjects,
// drops excluded records, and groups the survivors by contrast name. Files
// whose names cannot be parsed are skipped. An empty subjects list keeps
// every subject.
func Discover(inputDir string, subjects []string, excl *Exclusions) (map[string][]File, error) {
	wanted := make(map[string]struct{}, len(subjects))
	for _, s := range subjects {
		wanted[s] = struct{}{}
	}

	byContrast := make(map[string][]File)
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		name := d.Name()
		if !strings.HasSuffix(name, ".nii") && !strings.HasSuffix(name, ".nii.gz") {
			return nil
		}
		if !strings.Contains(name, "contrast-") {
			return nil
		}

		f, err := ParseEntities(path)
		if err != nil {
			log.Printf("skipping %s: %v", path, err)
			return nil
		}
		if len(wanted) > 0 {
			if _, ok := wanted[f.Subject]; !ok {
				return nil
			}
		}
		if excl != nil && excl.Excluded(f) {
			return nil
		}

		byContrast[f.Contrast] = append(byContrast[f.Contrast], f)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", inputDir, err)
	}

	return byContrast, nil
}
