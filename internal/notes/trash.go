package notes

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// recentlyDeletedNames are the localized display names of the system
// "Recently Deleted" folder. Notes exposes no schema flag for it.
var recentlyDeletedNames = []string{
	"Recently Deleted",
	"Nylig slettet",
	"Senast raderade",
	"Senest slettet",
	"Zuletzt gelöscht",
	"Supprimés récemment",
	"Eliminados recientemente",
	"Eliminati di recente",
	"Recent verwijderd",
	"Ostatnio usunięte",
	"Недавно удалённые",
	"Apagados recentemente",
	"Apagadas recentemente",
	"最近删除",
	"最近刪除",
	"最近削除した項目",
	"최근 삭제된 항목",
	"Son Silinenler",
	"Äskettäin poistetut",
	"Nedávno smazané",
	"Πρόσφατα διαγραμμένα",
	"Nemrég töröltek",
	"Șterse recent",
	"Nedávno vymazané",
	"เพิ่งลบ",
	"Đã xóa gần đây",
	"Нещодавно видалені",
}

var recentlyDeletedSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(recentlyDeletedNames))
	for _, n := range recentlyDeletedNames {
		set[fold(n)] = struct{}{}
	}
	return set
}()

// RecentlyDeletedNames returns the recognized localized names.
func RecentlyDeletedNames() []string {
	return append([]string(nil), recentlyDeletedNames...)
}

// IsRecentlyDeleted reports whether a folder display name is one of the
// localized "Recently Deleted" names, compared case-insensitively.
func IsRecentlyDeleted(name string) bool {
	_, ok := recentlyDeletedSet[fold(name)]
	return ok
}

// fold normalizes s for case-insensitive comparison.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
