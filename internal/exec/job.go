// Package exec runs shell commands, each reporting on its own live line.
package exec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/henri123lemoine/liveline/internal/config"
	"github.com/henri123lemoine/liveline/internal/render"
)

// Job is a shell command to run.
type Job struct {
	Name      string
	Command   string
	Dir       string
	Placement render.Placement
}

// Expand expands template variables in the job's command.
func (j Job) Expand() string {
	result := j.Command

	// {name} - Job name
	result = strings.ReplaceAll(result, "{name}", j.Name)

	dir := j.Dir
	if dir == "" {
		dir, _ = os.Getwd()
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	// {dir} - Full path to the working directory
	result = strings.ReplaceAll(result, "{dir}", dir)

	// {dir_base} - Working directory name
	result = strings.ReplaceAll(result, "{dir_base}", filepath.Base(dir))

	return result
}

// JobsFromConfig converts configured jobs.
func JobsFromConfig(cfgs []config.JobConfig) ([]Job, error) {
	jobs := make([]Job, 0, len(cfgs))
	for _, c := range cfgs {
		p, err := render.ParsePlacement(c.Placement)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", c.Name, err)
		}
		jobs = append(jobs, Job{
			Name:      c.Name,
			Command:   c.Command,
			Dir:       c.Dir,
			Placement: p,
		})
	}
	return jobs, nil
}

// jobSource implements fuzzy.Source for job fuzzy matching.
type jobSource []Job

func (j jobSource) String(i int) string {
	// Match against both name and command for better results
	return j[i].Name + " " + j[i].Command
}

func (j jobSource) Len() int {
	return len(j)
}

// Select returns the jobs matching pattern, best matches first.
// An empty pattern selects every job in its original order.
func Select(jobs []Job, pattern string) []Job {
	if pattern == "" {
		return jobs
	}

	matches := fuzzy.FindFrom(pattern, jobSource(jobs))
	selected := make([]Job, 0, len(matches))
	for _, match := range matches {
		selected = append(selected, jobs[match.Index])
	}
	return selected
}
