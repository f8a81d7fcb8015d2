package ops

import (
	"os"
)

// Delete removes rawPath, or, when pattern is non-empty, every match of
// pattern under rawPath. Missing targets count as success so clients can
// retry without distinguishing "already deleted" from "deleted now"; zero
// glob matches is likewise success. The pattern itself never passes
// through the path policy, only the root path does.
func (o *Ops) Delete(rawPath, pattern string) error {
	path, err := o.policy.Resolve(rawPath)
	if err != nil {
		return fromPolicy(err)
	}

	if pattern != "" {
		matches, err := Expand(path, pattern)
		if err != nil {
			return badRequest("Invalid pattern")
		}
		for _, m := range matches {
			if err := remove(m); err != nil {
				return internal(err)
			}
		}
		return nil
	}

	if err := remove(path); err != nil {
		return internal(err)
	}
	return nil
}

// remove deletes a single target, recursively for directories. A missing
// target is not an error.
func remove(path string) error {
	err := os.RemoveAll(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
