/*
	Package command encapsulates routines to process string commands and their
	optional "key=value" settings, as given on the ngportal command line.
*/
package command
