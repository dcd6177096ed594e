package orgmode

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/model"
	"github.com/rs/zerolog/log"
)

var (
	todoRegex      = regexp.MustCompile(`^\*+\s+TODO\s+(?:\[#([A-Z])\]\s*)?(.*?)(?:\s+(:(?:[\w@]+:)+))?\s*$`)
	headlineRegex  = regexp.MustCompile(`^\*+\s`)
	scheduledRegex = regexp.MustCompile(`SCHEDULED:\s+<(\d{4}-\d{2}-\d{2})[^>]*>`)
	effortRegex    = regexp.MustCompile(`^:EFFORT:\s+(\d+):(\d{2})\s*$`)
	idRegex        = regexp.MustCompile(`^:ID:\s+(\S+)`)
)

// parseFile parses an Org-mode file and returns its open tasks.
func parseFile(filePath string, defaultDay time.Time) ([]model.Task, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file, filePath, defaultDay)
}

// ParseFiles parses multiple Org-mode files and returns a slice of tasks.
func ParseFiles(filePaths []string, defaultDay time.Time) ([]model.Task, error) {
	var allTasks []model.Task
	for _, filePath := range filePaths {
		tasks, err := parseFile(filePath, defaultDay)
		if err != nil {
			return nil, err
		}
		allTasks = append(allTasks, tasks...)
	}
	return allTasks, nil
}

// Parse reads TODO headlines from r. Priority cookies [#A]/[#B]/[#C] map to
// High/Medium/Low, with org's default B when absent. The estimate comes from
// the :EFFORT: property (H:MM) and the date from SCHEDULED, falling back to
// defaultDay.
func Parse(r io.Reader, source string, defaultDay time.Time) ([]model.Task, error) {
	log.Debug().Str("source", source).Msg("parsing org file")
	scanner := bufio.NewScanner(r)
	var tasks []model.Task
	var currentTask *model.Task

	flush := func() {
		if currentTask != nil && currentTask.Name != "" {
			tasks = append(tasks, *currentTask)
		}
		currentTask = nil
	}

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if headlineRegex.MatchString(line) {
			flush()
			matches := todoRegex.FindStringSubmatch(line)
			if matches == nil {
				continue
			}
			currentTask = &model.Task{
				Name:     strings.TrimSpace(matches[2]),
				Priority: model.Medium,
				Date:     defaultDay,
				Source:   "orgmode",
			}
			if matches[1] != "" {
				currentTask.Priority = model.ParsePriority(matches[1])
			}
			if matches[3] != "" {
				currentTask.Tags = strings.Split(strings.Trim(matches[3], ":"), ":")
			}
			continue
		}
		if currentTask == nil {
			continue
		}

		if matches := scheduledRegex.FindStringSubmatch(line); matches != nil {
			day, err := time.ParseInLocation(model.DateLayout, matches[1], defaultDay.Location())
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", source, lineNo, err)
			}
			currentTask.Date = day
		} else if matches := effortRegex.FindStringSubmatch(line); matches != nil {
			hours, _ := strconv.Atoi(matches[1])
			minutes, _ := strconv.Atoi(matches[2])
			currentTask.Estimate = time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
		} else if matches := idRegex.FindStringSubmatch(line); matches != nil {
			currentTask.ID = matches[1]
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	model.AssignIDs("orgmode:"+source, tasks)

	return tasks, nil
}
