/*
NaiveSystems Analyze - A tool for static code analysis
Copyright (C) 2023  Naive Systems Ltd.

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

/*
This package should not import any other package of this module except
atomic, so that every layer can print progress and run commands through it.
*/
package basic

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/text/message"
)

func PrintfWithTimeStamp(format string, arg ...any) {
	prefix := fmt.Sprintf("%v ", time.Now().Format("2006-01-02 15:04:05"))
	message := fmt.Sprintf(prefix+format, arg...)
	fmt.Println(message)
	glog.Info(message)
}

func GetPercentString(v1, v2 int) string {
	if v2 <= 0 {
		return "100%"
	}
	percent := (v1 * 100) / v2
	return fmt.Sprintf("%d%%", percent)
}

// FormatTimeDuration prints d in seconds with up to three decimals and no
// trailing zeros, e.g. "3s" or "1.25s".
func FormatTimeDuration(d time.Duration) string {
	s := d / time.Second
	ms := (d - s*time.Second) / time.Millisecond
	if ms == 0 {
		return fmt.Sprintf("%ds", s)
	}
	frac := fmt.Sprintf("%03d", ms)
	for frac[len(frac)-1] == '0' {
		frac = frac[:len(frac)-1]
	}
	return fmt.Sprintf("%d.%ss", s, frac)
}

// ProgressPrinter prints the start and the end of named tasks of a batch.
// It is goroutine safe.
type ProgressPrinter struct {
	mutex       sync.Mutex
	printer     *message.Printer
	taskStarted map[string]time.Time
	started     int
	finished    int
	total       int
}

func NewProgressPrinter(total int, printer *message.Printer) *ProgressPrinter {
	return &ProgressPrinter{
		printer:     printer,
		total:       total,
		taskStarted: make(map[string]time.Time),
	}
}

// Called before a task starts
func (p *ProgressPrinter) Start(name string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.started++
	p.taskStarted[name] = time.Now()
	PrintfWithTimeStamp(p.printer.Sprintf("Start %s (%v/%v)", name, p.started, p.total))
}

// Called after a task finishes
func (p *ProgressPrinter) Finish(name string, status string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	elapsed := time.Since(p.taskStarted[name])
	delete(p.taskStarted, name)
	p.finished++
	percent := GetPercentString(p.finished, p.total)
	PrintfWithTimeStamp(p.printer.Sprintf("%s %s (%s, %v/%v) [%s]", status, name, percent, p.finished, p.total, FormatTimeDuration(elapsed)))
}
