package entity

import "time"

type CreateInstanceRequest struct {
	InstanceType string
	Region       string
	KeyName      string
}

type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

type ObjectListing struct {
	Bucket  string       `json:"bucket"`
	Prefix  string       `json:"prefix"`
	Files   []ObjectInfo `json:"files"`
	Folders []string     `json:"folders"`
}
