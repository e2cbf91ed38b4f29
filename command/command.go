package command

import (
	"fmt"
	"strings"
)

// Keys for setting various parameters within the command line via "key=value" arguments.
const (
	KeyConfig  = "config"
	KeyCatalog = "catalog"
	KeyDataset = "dataset"
	KeyView    = "view"
	KeySources = "sources"
	KeyHost    = "host"
)

var setKeys = map[string]bool{
	KeyConfig:  true,
	KeyCatalog: true,
	KeyDataset: true,
	KeyView:    true,
	KeySources: true,
	KeyHost:    true,
}

// Command supports command-based interaction with the portal.
type Command struct {
	// Args lists the elements of the command where Args[0] is the command string
	// and the other arguments are command arguments or optional settings of
	// the form "<key>=<value>"
	Args []string
}

func (cmd *Command) String() string {
	return strings.Join(cmd.Args, " ")
}

// Name returns the first argument which is assumed to be the name of the command.
func (cmd *Command) Name() string {
	if len(cmd.Args) == 0 {
		return ""
	}
	return cmd.Args[0]
}

// splitSetting returns the key and value of a "key=value" argument for a known key.
// Only the first "=" separates, so values may be URLs with query strings.
func splitSetting(arg string) (key, value string, ok bool) {
	elems := strings.SplitN(arg, "=", 2)
	if len(elems) != 2 || !setKeys[elems[0]] {
		return "", "", false
	}
	return elems[0], elems[1], true
}

// GetSetting scans a command for any "key=value" argument and returns
// the value of the passed 'key'.
func (cmd *Command) GetSetting(key string) (value string, found bool) {
	if len(cmd.Args) > 1 {
		for _, arg := range cmd.Args[1:] {
			if k, v, ok := splitSetting(arg); ok && k == key {
				return v, true
			}
		}
	}
	return
}

// RequireSetting is GetSetting with an error for a missing or empty setting.
func (cmd *Command) RequireSetting(key string) (string, error) {
	value, found := cmd.GetSetting(key)
	if !found || value == "" {
		return "", fmt.Errorf("%s command requires %s=... setting", cmd.Name(), key)
	}
	return value, nil
}

// SetCommandArgs sets a variadic argument set of string pointers to data
// command arguments, ignoring setting arguments of the form "<key>=<value>".
// If there aren't enough arguments to set a target, the target is set to the
// empty string.  It returns an 'overflow' slice that has all arguments
// beyond those needed for targets.
func (cmd *Command) SetCommandArgs(targets ...*string) (overflow []string) {
	for _, target := range targets {
		*target = ""
	}
	if len(cmd.Args) < 2 {
		return
	}
	curTarget := 0
	for _, arg := range cmd.Args[1:] {
		if _, _, ok := splitSetting(arg); ok {
			continue
		}
		if curTarget < len(targets) {
			*(targets[curTarget]) = arg
		} else {
			overflow = append(overflow, arg)
		}
		curTarget++
	}
	return
}

// SplitList splits a comma-separated setting such as "sources=em,mito", dropping
// empty elements.
func SplitList(s string) []string {
	var out []string
	for _, elem := range strings.Split(s, ",") {
		if elem = strings.TrimSpace(elem); elem != "" {
			out = append(out, elem)
		}
	}
	return out
}
