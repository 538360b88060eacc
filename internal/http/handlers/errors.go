package handlers

import "errors"

var errMissingTaskID = errors.New("task_id required")
