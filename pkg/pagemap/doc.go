// Package pagemap stores the pages of a session between requests.
//
// Each browser window gets its own PageMap, named by the wicket:pageMapName
// parameter. A PageMap assigns page ids, evicts the least recently used page
// when full and restores older page versions for the back button.
package pagemap
