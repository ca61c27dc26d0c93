/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package testutil

import (
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/mock"
)

type MockLoggerSink struct {
	mock.Mock
}

// NewMockLoggerSink returns a sink that accepts initialization, name and value scoping,
// and reports every verbosity level as disabled. Tests add expectations for Error and Info as needed.
func NewMockLoggerSink() *MockLoggerSink {
	sink := &MockLoggerSink{}
	sink.On("Init", mock.Anything).Return()
	sink.On("Enabled", mock.Anything).Return(false)
	sink.On("WithValues", mock.Anything).Return(sink)
	sink.On("WithName", mock.Anything).Return(sink)
	return sink
}

func (m *MockLoggerSink) Enabled(level int) bool {
	args := m.Called(level)
	return args.Bool(0)
}

func (m *MockLoggerSink) Error(err error, msg string, keysAndValues ...any) {
	m.Called(err, msg, keysAndValues)
}

func (m *MockLoggerSink) Info(level int, msg string, keysAndValues ...any) {
	m.Called(level, msg, keysAndValues)
}

func (m *MockLoggerSink) Init(info logr.RuntimeInfo) {
	m.Called(info)
}

func (m *MockLoggerSink) WithName(name string) logr.LogSink {
	args := m.Called(name)
	return args.Get(0).(logr.LogSink)
}

func (m *MockLoggerSink) WithValues(keysAndValues ...any) logr.LogSink {
	args := m.Called(keysAndValues)
	return args.Get(0).(logr.LogSink)
}

var _ logr.LogSink = (*MockLoggerSink)(nil)
