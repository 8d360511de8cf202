// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bench

import (
	"os"
	"slices"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Suite configures a benchmark session. It can be loaded from a YAML file with LoadSuite: the keys
// omitted from the file are filled in from DefaultSuite, the ones given (zeros included) are kept and validated.
type Suite struct {
	// Experiments to run, by name. See ExperimentNames.
	Experiments []string `yaml:"experiments" json:"experiments"`

	// Sizes of the square matrices used by the "linalg", "inline" and "optimization" experiments.
	Sizes []int `yaml:"sizes" json:"sizes"`

	// AlignmentSizes are the vector lengths used by the "alignment" experiment.
	AlignmentSizes []int `yaml:"alignment_sizes" json:"alignment_sizes"`

	// MaxMatMulSize caps the side of the matrices multiplied by the "cache" experiment: matrix-matrix
	// products sized around the last level cache can take minutes.
	MaxMatMulSize int `yaml:"max_matmul_size" json:"max_matmul_size"`

	// Runs timed per measurement, after one warm-up run.
	Runs int `yaml:"runs" json:"runs"`

	// BlockSize of the blocked kernels. If 0, it is derived from the L1 data cache size.
	BlockSize int `yaml:"block_size" json:"block_size"`

	// Workers of the parallel kernel: 0 means runtime.GOMAXPROCS(0).
	Workers int `yaml:"workers" json:"workers"`

	// Seed for the random matrices.
	Seed uint64 `yaml:"seed" json:"seed"`
}

// DefaultSuite returns the default configuration: all experiments, sizes 256, 512 and 1024, 5 runs.
func DefaultSuite() Suite {
	return Suite{
		Experiments:    ExperimentNames(),
		Sizes:          []int{256, 512, 1024},
		AlignmentSizes: []int{200_000, 400_000, 800_000, 1_600_000},
		MaxMatMulSize:  768,
		Runs:           5,
		Seed:           1,
	}
}

// integerKeys are the suite keys holding integers or lists of integers. yaml.v3 silently truncates
// floats decoded into ints, so these are checked on the YAML nodes first.
var integerKeys = map[string]bool{
	"sizes": true, "alignment_sizes": true, "max_matmul_size": true,
	"runs": true, "block_size": true, "workers": true, "seed": true,
}

// ParseSuite parses a YAML suite configuration, filling in omitted keys from DefaultSuite.
func ParseSuite(contents []byte) (Suite, error) {
	var suite Suite
	var doc yaml.Node
	if err := yaml.Unmarshal(contents, &doc); err != nil {
		return suite, errors.Wrap(err, "parsing benchmark suite")
	}
	present := make(map[string]bool)
	if len(doc.Content) > 0 {
		root := doc.Content[0]
		if root.Kind != yaml.MappingNode {
			return suite, errors.Errorf("parsing benchmark suite: line %d: expected a mapping of keys to values, got %s",
				root.Line, root.ShortTag())
		}
		for i := 0; i+1 < len(root.Content); i += 2 {
			key, value := root.Content[i].Value, root.Content[i+1]
			present[key] = true
			if integerKeys[key] {
				if err := checkIntegers(key, value); err != nil {
					return suite, errors.WithMessage(err, "parsing benchmark suite")
				}
			}
		}
		if err := root.Decode(&suite); err != nil {
			return suite, errors.Wrap(err, "parsing benchmark suite")
		}
	}
	suite.fillDefaults(present)
	if err := suite.Validate(); err != nil {
		return suite, err
	}
	return suite, nil
}

// checkIntegers returns an error if value is not an integer scalar, or a list of them.
func checkIntegers(key string, value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		for _, elem := range value.Content {
			if elem.Kind != yaml.ScalarNode || elem.ShortTag() != "!!int" {
				return errors.Errorf("line %d: %s must be a list of integers, got %q", elem.Line, key, elem.Value)
			}
		}
		return nil
	}
	if value.Kind != yaml.ScalarNode || value.ShortTag() != "!!int" {
		return errors.Errorf("line %d: %s must be an integer, got %q", value.Line, key, value.Value)
	}
	return nil
}

// LoadSuite reads and parses a YAML suite configuration file.
func LoadSuite(path string) (Suite, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return Suite{}, errors.Wrapf(err, "reading benchmark suite from %q", path)
	}
	suite, err := ParseSuite(contents)
	if err != nil {
		return suite, errors.WithMessagef(err, "file %q", path)
	}
	return suite, nil
}

// Marshal the suite to YAML.
func (s Suite) Marshal() ([]byte, error) {
	contents, err := yaml.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling benchmark suite")
	}
	return contents, nil
}

// fillDefaults sets the fields whose YAML keys are not present.
func (s *Suite) fillDefaults(present map[string]bool) {
	defaults := DefaultSuite()
	if !present["experiments"] {
		s.Experiments = defaults.Experiments
	}
	if !present["sizes"] {
		s.Sizes = defaults.Sizes
	}
	if !present["alignment_sizes"] {
		s.AlignmentSizes = defaults.AlignmentSizes
	}
	if !present["max_matmul_size"] {
		s.MaxMatMulSize = defaults.MaxMatMulSize
	}
	if !present["runs"] {
		s.Runs = defaults.Runs
	}
	if !present["seed"] {
		s.Seed = defaults.Seed
	}
}

// Validate checks that the experiments exist and that the numeric parameters are valid.
func (s Suite) Validate() error {
	known := ExperimentNames()
	for _, name := range s.Experiments {
		if !slices.Contains(known, name) {
			return errors.Errorf("unknown experiment %q, known experiments: %v", name, known)
		}
	}
	for _, n := range s.Sizes {
		if n <= 0 {
			return errors.Errorf("invalid matrix size %d: it must be > 0", n)
		}
	}
	for _, n := range s.AlignmentSizes {
		if n <= 0 {
			return errors.Errorf("invalid alignment vector size %d: it must be > 0", n)
		}
	}
	if s.Runs <= 0 {
		return errors.Errorf("invalid number of runs %d: it must be > 0", s.Runs)
	}
	if s.BlockSize < 0 {
		return errors.Errorf("invalid block size %d: it must be >= 0 (0 for automatic)", s.BlockSize)
	}
	if s.MaxMatMulSize <= 0 {
		return errors.Errorf("invalid max_matmul_size %d: it must be > 0", s.MaxMatMulSize)
	}
	return nil
}
