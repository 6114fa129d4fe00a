// Package report defines the pluggable lifecycle-event interface consumed
// by the scheduler (start_suite, start_running_test, repeat_running_test,
// finished_running_test, finished_suite, test_list, warning) plus the
// pretty, terse, JSON, JUnit and CTRF implementations, grounded on the
// upstream output/{mod,pretty,terse,json,junit,ctrf}.rs modules.
package report
