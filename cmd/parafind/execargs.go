package main

import "fmt"

// extractExec implements the pre-cobra pass from §4.I: find a bare "--exec"
// argument, consume every following argument up to and including a bare
// ";" terminator, and return argv with that slice removed. A missing
// terminator is a fatal parse error.
func extractExec(argv []string) (rest, execCmdLine []string, err error) {
	idx := -1
	for i, a := range argv {
		if a == "--exec" {
			idx = i
			break
		}
	}
	if idx == -1 {
		return argv, nil, nil
	}

	end := -1
	for j := idx + 1; j < len(argv); j++ {
		if argv[j] == ";" {
			end = j
			break
		}
	}
	if end == -1 {
		return nil, nil, fmt.Errorf("--exec requires a terminating ';' argument")
	}

	execCmdLine = append([]string{}, argv[idx+1:end]...)
	rest = make([]string, 0, len(argv)-(end-idx+1))
	rest = append(rest, argv[:idx]...)
	rest = append(rest, argv[end+1:]...)
	return rest, execCmdLine, nil
}
