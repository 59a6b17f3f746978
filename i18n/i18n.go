// Package i18n holds the translated strings of the playlist page and picks a
// language for a request.
package i18n

import (
	"sort"

	"golang.org/x/text/language"
)

// Text keys.
const (
	KeyTitle             = "title"
	KeyNowPlaying        = "nowPlaying"
	KeyNoSongs           = "no_songs"
	KeyFolders           = "folders"
	KeyCustom            = "custom"
	KeyAdd               = "add"
	KeyRemove            = "remove"
	KeyDownload          = "download"
	KeyRemoveConfirm     = "remove_confirm"
	KeyAlreadyInPlaylist = "already_in_playlist"
	KeyAddedToPlaylist   = "added_to_playlist"
	KeyAddFailed         = "add_failed"
)

// Dictionary maps text keys to translated strings.
type Dictionary map[string]string

// Get returns the translation of key, or key itself when it is missing.
func (d Dictionary) Get(key string) string {
	if s, ok := d[key]; ok {
		return s
	}
	return key
}

var catalog = map[language.Tag]Dictionary{
	language.English: {
		KeyTitle:             "Music Player",
		KeyNowPlaying:        "Now Playing",
		KeyNoSongs:           "No songs in this folder",
		KeyFolders:           "Folders",
		KeyCustom:            "Custom Playlist",
		KeyAdd:               "Add to playlist",
		KeyRemove:            "Remove",
		KeyDownload:          "Download",
		KeyRemoveConfirm:     "Remove this song from custom playlist?",
		KeyAlreadyInPlaylist: "Song already in custom playlist!",
		KeyAddedToPlaylist:   "Added to Custom Playlist!",
		KeyAddFailed:         "Failed to add to playlist. Storage may be full.",
	},
	language.SimplifiedChinese: {
		KeyTitle:             "音乐播放器",
		KeyNowPlaying:        "正在播放",
		KeyNoSongs:           "此文件夹中没有歌曲",
		KeyFolders:           "文件夹",
		KeyCustom:            "自定义歌单",
		KeyAdd:               "加入歌单",
		KeyRemove:            "移除",
		KeyDownload:          "下载",
		KeyRemoveConfirm:     "确定要从自定义歌单中移除这首歌吗？",
		KeyAlreadyInPlaylist: "歌曲已在自定义歌单中！",
		KeyAddedToPlaylist:   "已加入自定义歌单！",
		KeyAddFailed:         "加入歌单失败，存储空间可能已满。",
	},
}

// supported lists catalog tags; the first one is the fallback for the matcher.
var supported = []language.Tag{language.English, language.SimplifiedChinese}

var matcher = language.NewMatcher(supported)

// Languages returns the supported language tags as strings, sorted.
func Languages() []string {
	out := make([]string, 0, len(supported))
	for _, t := range supported {
		out = append(out, t.String())
	}
	sort.Strings(out)
	return out
}

// Match picks a dictionary. An explicit preference (e.g. a ?lang= value) wins
// over the Accept-Language header; fallback is used when neither parses.
func Match(preferred, acceptLanguage, fallback string) (language.Tag, Dictionary) {
	if preferred != "" {
		if t, err := language.Parse(preferred); err == nil {
			if _, idx, conf := matcher.Match(t); conf != language.No {
				tag := supported[idx]
				return tag, catalog[tag]
			}
		}
	}

	var wants []language.Tag
	if acceptLanguage != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil {
			wants = append(wants, tags...)
		}
	}
	if fallback != "" {
		if t, err := language.Parse(fallback); err == nil {
			wants = append(wants, t)
		}
	}

	_, idx, _ := matcher.Match(wants...)
	tag := supported[idx]
	return tag, catalog[tag]
}
