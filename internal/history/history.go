package history

import (
	"bufio"
	"os"
	"sync"
)

const (
	startSize = 2
	maxItems  = 1000
)

// History is an append-only log of submitted lines with a browse cursor
// that moves independently of the insert position.
type History struct {
	items  []string
	insert int
	browse int
	file   string
	mu     sync.Mutex
}

// New returns a History seeded from file. An empty file name disables
// persistence.
func New(file string) (*History, error) {
	h := &History{
		items: make([]string, startSize),
		file:  file,
	}
	if err := h.load(); err != nil {
		return nil, err
	}
	return h, nil
}

// Add appends item and leaves the browse cursor alone. Empty lines are
// ignored.
func (h *History) Add(item string) {
	if item == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.add(item)
}

func (h *History) add(item string) {
	if h.insert == len(h.items) {
		grown := make([]string, 2*len(h.items))
		copy(grown, h.items)
		h.items = grown
	}
	h.items[h.insert] = item
	h.insert++
}

func (h *History) Up() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.browse = max(h.browse-1, 0)
}

func (h *History) Down() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.browse = min(h.browse+1, h.insert)
}

// Entry returns the line under the browse cursor, or "" when not browsing.
func (h *History) Entry() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.browse == h.insert {
		return ""
	}
	return h.items[h.browse]
}

func (h *History) ResetBrowse() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.browse = h.insert
}

func (h *History) IsBrowseReset() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.browse == h.insert
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.insert
}

func (h *History) GetAll() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]string{}, h.items[:h.insert]...)
}

func (h *History) load() error {
	if h.file == "" {
		return nil
	}
	file, err := os.Open(h.file)
	if err != nil {
		return nil
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			h.add(line)
		}
	}
	h.browse = h.insert
	return scanner.Err()
}

// Save writes the newest entries back to the history file.
func (h *History) Save() error {
	if h.file == "" {
		return nil
	}
	items := h.GetAll()
	if len(items) > maxItems {
		items = items[len(items)-maxItems:]
	}

	file, err := os.Create(h.file)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, item := range items {
		if _, err := writer.WriteString(item + "\n"); err != nil {
			return err
		}
	}
	return writer.Flush()
}
