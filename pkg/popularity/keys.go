// Package popularity names the Redis sorted sets that rank menu items by
// ordered quantity. feed-svc writes them and analytics-svc reads them.
package popularity

import "time"

// DailyTTL keeps a week of daily rankings plus a day of slack.
const DailyTTL = 8 * 24 * time.Hour

const dateLayout = "2006-01-02"

func DailyKey(restaurantID string, day time.Time) string {
	return "popularity:daily:" + day.UTC().Format(dateLayout) + ":" + restaurantID
}

func AllTimeKey(restaurantID string) string {
	return "popularity:alltime:" + restaurantID
}
