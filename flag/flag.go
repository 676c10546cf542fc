package flag

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/bobuhiro11/rvstart/vmm"
)

var errUnknownKeys = errors.New("unknown keys")

// ParseSize parses a size string as number[gGmMkK]. The multiplier is optional,
// and if not set, the unit passed in is used. The number can be any base and
// size.
func ParseSize(s, unit string) (int, error) {
	sz := strings.TrimRight(s, "gGmMkK")
	if len(sz) == 0 {
		return -1, fmt.Errorf("%q:can't parse as num[gGmMkK]:%w", s, strconv.ErrSyntax)
	}

	amt, err := strconv.ParseUint(sz, 0, 0)
	if err != nil {
		return -1, err
	}

	if len(s) > len(sz) {
		unit = s[len(sz):]
	}

	switch unit {
	case "G", "g":
		return int(amt) << 30, nil
	case "M", "m":
		return int(amt) << 20, nil
	case "K", "k":
		return int(amt) << 10, nil
	case "":
		return int(amt), nil
	}

	return -1, fmt.Errorf("can not parse %q as num[gGmMkK]:%w", s, strconv.ErrSyntax)
}

// File is the TOML config file. Keys left out keep their current value.
//
//	ncpus = 2
//	mem_size = "4M"
//	interval = 1000000
type File struct {
	NCPUs    int    `toml:"ncpus"`
	MemSize  string `toml:"mem_size"`
	Interval uint64 `toml:"interval"`
}

// LoadFile reads the config file at path into c.
func LoadFile(path string, c *vmm.Config) error {
	var f File

	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return fmt.Errorf("%s:%w", path, err)
	}

	if keys := md.Undecoded(); len(keys) > 0 {
		return fmt.Errorf("%s: %v:%w", path, keys, errUnknownKeys)
	}

	return f.apply(c)
}

func (f File) apply(c *vmm.Config) error {
	if f.NCPUs != 0 {
		c.NCPUs = f.NCPUs
	}

	if f.MemSize != "" {
		n, err := ParseSize(f.MemSize, "m")
		if err != nil {
			return err
		}

		c.MemSize = n
	}

	if f.Interval != 0 {
		c.Interval = f.Interval
	}

	return nil
}
