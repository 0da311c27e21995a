package model

import "time"

// Report identifies a written report artifact on disk.
type Report struct {
	Name    string    `json:"name"`
	Path    string    `json:"-"`
	Date    string    `json:"date"`
	Time    string    `json:"time"`
	Pull    uint64    `json:"pull"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}
