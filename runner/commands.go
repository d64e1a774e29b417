package runner

import (
	"github.com/google/uuid"

	"gomck/property"
)

type command interface{}

type stepCmd struct {
	Id             uuid.UUID
	Property       property.Property
	MaxRefinements int
}

type resetCmd struct{}

type stopCmd struct{}
