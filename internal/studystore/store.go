package studystore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"viewerd/internal/common/fsutil"
	"viewerd/pkg/types"
)

// Store is a read-only lookup of studies loaded from manifest files.
type Store struct {
	studies map[string]types.Study
	order   []string
}

// LoadDir scans a directory for *.study.yaml / *.study.yml / *.study.json
// manifests and builds a store. Files that are not study manifests are
// ignored; malformed manifests fail the whole load.
func LoadDir(dir string) (*Store, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	if !fsutil.PathExists(abs) {
		return nil, fmt.Errorf("studies dir does not exist: %s", abs)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	s := &Store{studies: make(map[string]types.Study)}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		var isYAML, isJSON bool
		switch {
		case strings.HasSuffix(name, ".study.yaml"), strings.HasSuffix(name, ".study.yml"):
			isYAML = true
		case strings.HasSuffix(name, ".study.json"):
			isJSON = true
		default:
			continue
		}
		b, err := os.ReadFile(filepath.Join(abs, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		var st types.Study
		if isYAML {
			err = yaml.Unmarshal(b, &st)
		} else if isJSON {
			err = json.Unmarshal(b, &st)
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
		}
		if st.StudyUID == "" {
			return nil, fmt.Errorf("parse %s: missing study_uid", e.Name())
		}
		if _, dup := s.studies[st.StudyUID]; !dup {
			s.order = append(s.order, st.StudyUID)
		}
		s.studies[st.StudyUID] = st
	}
	sort.Strings(s.order)
	return s, nil
}

// NewFromStudies builds a store from in-memory records (tests, embedding).
func NewFromStudies(studies []types.Study) *Store {
	s := &Store{studies: make(map[string]types.Study, len(studies))}
	for _, st := range studies {
		if _, dup := s.studies[st.StudyUID]; !dup {
			s.order = append(s.order, st.StudyUID)
		}
		s.studies[st.StudyUID] = st
	}
	sort.Strings(s.order)
	return s
}

// Get returns the study with the given UID.
func (s *Store) Get(studyUID string) (types.Study, bool) {
	st, ok := s.studies[studyUID]
	return st, ok
}

// GetSeries returns one series of a study.
func (s *Store) GetSeries(studyUID, seriesUID string) (types.Study, types.Series, bool) {
	st, ok := s.studies[studyUID]
	if !ok {
		return types.Study{}, types.Series{}, false
	}
	for _, se := range st.Series {
		if se.SeriesUID == seriesUID {
			return st, se, true
		}
	}
	return types.Study{}, types.Series{}, false
}

// List returns all studies in UID order. The slice is a copy.
func (s *Store) List() []types.Study {
	out := make([]types.Study, 0, len(s.order))
	for _, uid := range s.order {
		out = append(out, s.studies[uid])
	}
	return out
}
