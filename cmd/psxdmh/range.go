package main

import (
	"strconv"
	"strings"

	"github.com/ben-michell/psxdmh"
)

// parseRange converts a range specification into item numbers. The
// specification is a comma-separated list of numbers and from-to ranges,
// such as "7" or "90,95" or "90-119,0". Items must be below the limit.
func parseRange(spec string, limit uint16, itemName string) ([]uint16, error) {
	if spec == "" {
		return nil, psxdmh.Errorf(psxdmh.InvalidConfig, "no %s numbers given", itemName)
	}
	var items []uint16
	for _, part := range strings.Split(spec, ",") {
		first, last, found := strings.Cut(part, "-")
		from, err := parseItem(first, limit, itemName)
		if err != nil {
			return nil, err
		}
		to := from
		if found {
			if to, err = parseItem(last, limit, itemName); err != nil {
				return nil, err
			}
		}
		if to < from {
			return nil, psxdmh.Errorf(psxdmh.InvalidConfig, "invalid %s range %q", itemName, part)
		}
		for item := from; ; item++ {
			items = append(items, item)
			if item == to {
				break
			}
		}
	}
	return items, nil
}

func parseItem(value string, limit uint16, itemName string) (uint16, error) {
	item, err := strconv.ParseUint(strings.TrimSpace(value), 10, 16)
	if err != nil || item >= uint64(limit) {
		return 0, psxdmh.Errorf(psxdmh.InvalidConfig, "invalid %s number %q", itemName, value)
	}
	return uint16(item), nil
}
